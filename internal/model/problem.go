package model

import "fmt"

// Problem is a nesting instance: a fixed-width stock sheet of unbounded
// length and the shapes to place on it.
type Problem struct {
	Name           string  `json:"name"`
	SheetWidth     int     `json:"sheet_width"`
	Shapes         []Shape `json:"shapes"`
	OverlapPenalty int     `json:"overlap_penalty"` // fitness lost per overlapping cell; 0 means SheetWidth
}

// NewProblem creates a problem with the default overlap penalty.
func NewProblem(name string, sheetWidth int, shapes []Shape) Problem {
	return Problem{
		Name:       name,
		SheetWidth: sheetWidth,
		Shapes:     shapes,
	}
}

// Validate checks that every shape can be placed on the sheet.
func (p *Problem) Validate() error {
	if p.SheetWidth <= 0 {
		return fmt.Errorf("sheet width must be positive, got %d", p.SheetWidth)
	}
	if len(p.Shapes) == 0 {
		return fmt.Errorf("problem has no shapes")
	}
	for i := range p.Shapes {
		if !p.Shapes[i].FitsWidth(p.SheetWidth) {
			return fmt.Errorf("shape %d (%s) does not fit sheet width %d in any orientation",
				i+1, p.Shapes[i].Label, p.SheetWidth)
		}
	}
	if p.OverlapPenalty < 0 {
		return fmt.Errorf("overlap penalty must not be negative, got %d", p.OverlapPenalty)
	}
	return nil
}

// Penalty returns the effective per-cell overlap penalty.
func (p *Problem) Penalty() int {
	if p.OverlapPenalty == 0 {
		return p.SheetWidth
	}
	return p.OverlapPenalty
}

// MaxLength is the sheet length needed to lay every shape end to end. It
// bounds the X domain of every placement.
func (p *Problem) MaxLength() int {
	total := 0
	for i := range p.Shapes {
		total += p.Shapes[i].MaxExtent()
	}
	return total
}

// TotalArea returns the number of cells covered by all shapes.
func (p *Problem) TotalArea() int {
	total := 0
	for i := range p.Shapes {
		total += p.Shapes[i].Area()
	}
	return total
}

// Domain returns the inclusive upper bounds for X and Y of shape i in
// orientation rot. ok is false when the orientation does not fit the sheet.
func (p *Problem) Domain(i, rot int) (maxX, maxY int, ok bool) {
	o := p.Shapes[i].Orientation(rot)
	maxX = p.MaxLength() - o.Length
	maxY = p.SheetWidth - o.Width
	return maxX, maxY, maxX >= 0 && maxY >= 0
}

// Placement is the gene for one shape: its position and rotation.
type Placement struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"` // quarter turns clockwise, 0..3
}

// Layout is one placement per shape, indexed like Problem.Shapes.
type Layout []Placement

// Clone returns an independent copy of the layout.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// Occupancy lists the sheet cells covered by a layout along with coverage
// statistics.
type Occupancy struct {
	Owners  map[Cell][]int // shape indices covering each cell
	Length  int            // used sheet length
	Overlap int            // cells covered more than once, counted per extra cover
}

// Occupy places every shape of the layout on the sheet grid.
func (p *Problem) Occupy(l Layout) Occupancy {
	occ := Occupancy{Owners: make(map[Cell][]int, p.TotalArea())}
	for i, pl := range l {
		o := p.Shapes[i].Orientation(pl.Rotation)
		for _, c := range o.Cells {
			cell := Cell{X: pl.X + c.X, Y: pl.Y + c.Y}
			owners := occ.Owners[cell]
			if len(owners) > 0 {
				occ.Overlap++
			}
			occ.Owners[cell] = append(owners, i)
		}
		occ.Length = max(occ.Length, pl.X+o.Length)
	}
	return occ
}
