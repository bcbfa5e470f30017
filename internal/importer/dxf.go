package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment is one straight edge awaiting chaining into a closed outline.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// DefaultCellSize is the drawing length mapped to one grid cell when none is given.
const DefaultCellSize = 1.0

// ImportDXF imports shapes from a DXF file. Each closed outline (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) is rasterized on a grid of
// cellSize drawing units and becomes one shape.
func ImportDXF(path string, cellSize float64) ImportResult {
	result := ImportResult{}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []model.Outline
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	for _, co := range chainSegments(segments, 0.01) {
		if len(co) >= 3 {
			outlines = append(outlines, co)
		}
	}

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	result.Shapes = outlinesToShapes(outlines, cellSize, &result.Warnings)
	if len(result.Shapes) == 0 {
		result.Errors = append(result.Errors, "No shape covers a full grid cell")
	}
	return result
}

// outlinesToShapes rasterizes each outline into a shape. Outlines too small
// to cover a cell center are skipped with a warning.
func outlinesToShapes(outlines []model.Outline, cellSize float64, warnings *[]string) []model.Shape {
	var shapes []model.Shape
	for i, outline := range outlines {
		label := fmt.Sprintf("DXF Shape %d", i+1)
		cells := normalizeOutline(outline).Rasterize(cellSize)
		if len(cells) == 0 {
			min, max := outline.BoundingBox()
			*warnings = append(*warnings,
				fmt.Sprintf("Skipped %s (%.2f x %.2f) smaller than one cell", label, max.X-min.X, max.Y-min.Y))
			continue
		}
		s, err := model.NewShape(label, cells)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("Skipped %s: %v", label, err))
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes
}

// arcSegments is the number of straight edges used per curved edge.
const arcSegments = 32

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an Outline.
// A non-zero bulge on a vertex curves the edge to the next vertex.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline
	n := len(lw.Vertices)
	for i, v := range lw.Vertices {
		current := model.Point2D{X: v[0], Y: v[1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			outline = append(outline, current)
			continue
		}
		nv := lw.Vertices[(i+1)%n]
		pts := bulgeArcPoints(current, model.Point2D{X: nv[0], Y: nv[1]}, bulge)
		// The next vertex adds the arc's end point
		outline = append(outline, pts[:len(pts)-1]...)
	}
	return outline
}

// bulgeArcPoints samples the arc between p1 and p2 described by a DXF bulge,
// the tangent of a quarter of the included angle. Positive bulges turn
// counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64) []model.Point2D {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []model.Point2D{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	// Center sits on the chord's perpendicular bisector
	nx, ny := -dy/chord, dx/chord
	if bulge < 0 {
		nx, ny = -nx, -ny
	}
	off := radius - sagitta
	cx := (p1.X+p2.X)/2 + nx*off
	cy := (p1.Y+p2.Y)/2 + ny*off

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	switch {
	case bulge > 0 && end < start:
		end += 2 * math.Pi
	case bulge < 0 && end > start:
		end -= 2 * math.Pi
	}
	return arcPoints(cx, cy, radius, start, end, arcSegments)
}

// arcPoints samples n+1 points from angle start to end (radians).
func arcPoints(cx, cy, r, start, end float64, n int) []model.Point2D {
	pts := make([]model.Point2D, n+1)
	for i := range pts {
		a := start + (end-start)*float64(i)/float64(n)
		pts[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, n int) model.Outline {
	pts := arcPoints(c.Center[0], c.Center[1], c.Radius, 0, 2*math.Pi, n)
	return model.Outline(pts[:n])
}

// arcToPoints samples a DXF ARC entity. Its angles are in degrees and run
// counter-clockwise.
func arcToPoints(a *entity.Arc, n int) []model.Point2D {
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	return arcPoints(a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius, start, end, n)
}

func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// outlines, largest area first. Open chains of three or more points are
// kept and treated as implicitly closed.
func chainSegments(segs []segment, tolerance float64) []model.Outline {
	used := make([]bool, len(segs))
	var outlines []model.Outline

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := []model.Point2D{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				var next model.Point2D
				switch {
				case pointsClose(tail, seg.start, tolerance):
					next = seg.end
				case pointsClose(tail, seg.end, tolerance):
					next = seg.start
				default:
					continue
				}
				chain = append(chain, next)
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			outlines = append(outlines, model.Outline(chain))
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea is the absolute shoelace area.
func outlineArea(o model.Outline) float64 {
	if len(o) < 3 {
		return 0
	}
	var twice float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		twice += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(twice) / 2
}

// normalizeOutline moves the outline's bounding box to the origin.
func normalizeOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return o
	}
	min, _ := o.BoundingBox()
	return o.Translate(-min.X, -min.Y)
}
