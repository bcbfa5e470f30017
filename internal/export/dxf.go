package export

import (
	"fmt"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layer names.
const (
	LayerSheet   = "SHEET"
	LayerShapes  = "SHAPES"
	LayerOverlap = "OVERLAP"
)

// ExportDXF writes the best layout as a DXF drawing with cellSize drawing
// units per grid cell. The used part of the sheet is outlined on the SHEET
// layer, shape outlines go on SHAPES and overlapping cells on OVERLAP. The
// drawing's Y axis points up, so sheet row 0 is at the top.
func ExportDXF(path string, r model.Result, cellSize float64) error {
	if len(r.Best.Layout) == 0 {
		return fmt.Errorf("no layout to export")
	}
	if cellSize <= 0 {
		cellSize = 1
	}

	p := &r.Problem
	occ := p.Occupy(r.Best.Layout)

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerSheet, color.White},
		{LayerOverlap, color.Red},
		{LayerShapes, color.Cyan},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	toDXF := func(x, y int) (float64, float64) {
		return float64(x) * cellSize, float64(p.SheetWidth-y) * cellSize
	}
	line := func(x1, y1, x2, y2 int) error {
		ax, ay := toDXF(x1, y1)
		bx, by := toDXF(x2, y2)
		if _, err := d.Line(ax, ay, 0, bx, by, 0); err != nil {
			return fmt.Errorf("failed to draw line: %w", err)
		}
		return nil
	}

	if err := d.ChangeLayer(LayerSheet); err != nil {
		return err
	}
	for _, e := range rectEdges(0, 0, occ.Length, p.SheetWidth) {
		if err := line(e[0], e[1], e[2], e[3]); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerOverlap); err != nil {
		return err
	}
	for cell, owners := range occ.Owners {
		if len(owners) < 2 {
			continue
		}
		for _, e := range rectEdges(cell.X, cell.Y, 1, 1) {
			if err := line(e[0], e[1], e[2], e[3]); err != nil {
				return err
			}
		}
	}

	if err := d.ChangeLayer(LayerShapes); err != nil {
		return err
	}
	for _, e := range shapeEdges(p, r.Best.Layout) {
		if err := line(e[0], e[1], e[2], e[3]); err != nil {
			return err
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// edge is a grid line segment x1, y1, x2, y2.
type edge [4]int

func rectEdges(x, y, w, h int) []edge {
	return []edge{
		{x, y, x + w, y},
		{x + w, y, x + w, y + h},
		{x + w, y + h, x, y + h},
		{x, y + h, x, y},
	}
}

// shapeEdges returns the boundary of every placed shape: each cell side
// whose neighbour does not belong to the same shape.
func shapeEdges(p *model.Problem, l model.Layout) []edge {
	var edges []edge
	for i, pl := range l {
		o := p.Shapes[i].Orientation(pl.Rotation)
		own := make(map[model.Cell]bool, len(o.Cells))
		for _, c := range o.Cells {
			own[c] = true
		}
		for _, c := range o.Cells {
			x, y := pl.X+c.X, pl.Y+c.Y
			if !own[model.Cell{X: c.X, Y: c.Y - 1}] {
				edges = append(edges, edge{x, y, x + 1, y})
			}
			if !own[model.Cell{X: c.X + 1, Y: c.Y}] {
				edges = append(edges, edge{x + 1, y, x + 1, y + 1})
			}
			if !own[model.Cell{X: c.X, Y: c.Y + 1}] {
				edges = append(edges, edge{x + 1, y + 1, x, y + 1})
			}
			if !own[model.Cell{X: c.X - 1, Y: c.Y}] {
				edges = append(edges, edge{x, y + 1, x, y})
			}
		}
	}
	return edges
}
