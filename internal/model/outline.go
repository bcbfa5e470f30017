package model

import "math"

// Point2D represents a 2D coordinate in drawing units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = o[0]
	max = o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Contains reports whether p lies inside the outline (even-odd rule).
func (o Outline) Contains(p Point2D) bool {
	inside := false
	for i, j := 0, len(o)-1; i < len(o); j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Rasterize converts the outline to grid cells of the given size. A cell is
// part of the shape when its center lies inside the outline.
func (o Outline) Rasterize(cellSize float64) []Cell {
	if len(o) < 3 || cellSize <= 0 {
		return nil
	}
	min, max := o.BoundingBox()
	cols := int(math.Ceil((max.X - min.X) / cellSize))
	rows := int(math.Ceil((max.Y - min.Y) / cellSize))

	var cells []Cell
	for cx := 0; cx < cols; cx++ {
		for cy := 0; cy < rows; cy++ {
			center := Point2D{
				X: min.X + (float64(cx)+0.5)*cellSize,
				Y: min.Y + (float64(cy)+0.5)*cellSize,
			}
			if o.Contains(center) {
				cells = append(cells, Cell{X: cx, Y: cy})
			}
		}
	}
	return cells
}
