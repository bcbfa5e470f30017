package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Cell is one unit square of the stock sheet grid.
// X runs along the sheet length, Y across its fixed width.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a single step direction in a shape move string.
type Direction byte

const (
	DirRight Direction = 'R'
	DirLeft  Direction = 'L'
	DirUp    Direction = 'U'
	DirDown  Direction = 'D'
)

func (d Direction) delta() (dx, dy int, ok bool) {
	switch d {
	case DirRight:
		return 1, 0, true
	case DirLeft:
		return -1, 0, true
	case DirUp:
		return 0, -1, true
	case DirDown:
		return 0, 1, true
	default:
		return 0, 0, false
	}
}

// NumRotations is the number of 90 degree orientations every shape has.
const NumRotations = 4

// Orientation is a shape rotated by a multiple of 90 degrees, normalized so
// that its smallest X and Y are both 0.
type Orientation struct {
	Cells  []Cell `json:"cells"`
	Length int    `json:"length"` // extent along X
	Width  int    `json:"width"`  // extent along Y
}

// Shape is an irregular piece to be nested on the stock sheet.
type Shape struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Moves string `json:"moves,omitempty"` // source move string, if parsed from one
	Cells []Cell `json:"cells"`

	orientations [NumRotations]Orientation
}

// NewShape builds a shape from a set of cells. Duplicate cells are merged and
// the result is normalized.
func NewShape(label string, cells []Cell) (Shape, error) {
	if len(cells) == 0 {
		return Shape{}, fmt.Errorf("shape %q has no cells", label)
	}
	s := Shape{
		ID:    uuid.New().String()[:8],
		Label: label,
		Cells: normalizeCells(cells),
	}
	s.buildOrientations()
	return s, nil
}

// MaxShapeSteps bounds the total number of steps in one move string.
const MaxShapeSteps = 10000

// ParseShape parses a move string such as "R3 D1 L2 U1". The walk starts on
// cell (0,0) and every step marks the cell it enters.
func ParseShape(label, moves string) (Shape, error) {
	cells := []Cell{{0, 0}}
	x, y, steps := 0, 0, 0
	for _, tok := range strings.Fields(moves) {
		if len(tok) < 2 {
			return Shape{}, fmt.Errorf("shape %q: invalid move %q", label, tok)
		}
		dx, dy, ok := Direction(strings.ToUpper(tok[:1])[0]).delta()
		if !ok {
			return Shape{}, fmt.Errorf("shape %q: unknown direction in move %q", label, tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 0 {
			return Shape{}, fmt.Errorf("shape %q: invalid distance in move %q", label, tok)
		}
		if n > MaxShapeSteps-steps {
			return Shape{}, fmt.Errorf("shape %q: move %q exceeds the %d step limit", label, tok, MaxShapeSteps)
		}
		steps += n
		for i := 0; i < n; i++ {
			x += dx
			y += dy
			cells = append(cells, Cell{x, y})
		}
	}
	s, err := NewShape(label, cells)
	if err != nil {
		return Shape{}, err
	}
	s.Moves = strings.TrimSpace(moves)
	return s, nil
}

// Orientation returns the shape rotated clockwise rot quarter turns.
// rot is taken modulo NumRotations.
func (s *Shape) Orientation(rot int) Orientation {
	if s.orientations[0].Cells == nil {
		s.buildOrientations()
	}
	rot %= NumRotations
	if rot < 0 {
		rot += NumRotations
	}
	return s.orientations[rot]
}

// FitsWidth reports whether at least one orientation fits a sheet of the given width.
func (s *Shape) FitsWidth(width int) bool {
	for r := 0; r < NumRotations; r++ {
		if s.Orientation(r).Width <= width {
			return true
		}
	}
	return false
}

// MaxExtent returns the largest extent over all orientations.
func (s *Shape) MaxExtent() int {
	o := s.Orientation(0)
	return max(o.Length, o.Width)
}

// Area returns the number of cells the shape covers.
func (s *Shape) Area() int {
	return len(s.Cells)
}

func (s *Shape) buildOrientations() {
	cur := s.Cells
	for r := 0; r < NumRotations; r++ {
		o := Orientation{Cells: cur}
		for _, c := range cur {
			o.Length = max(o.Length, c.X+1)
			o.Width = max(o.Width, c.Y+1)
		}
		s.orientations[r] = o
		cur = rotateCells(cur)
	}
}

// rotateCells turns cells a quarter clockwise: (x, y) -> (-y, x).
func rotateCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{X: -c.Y, Y: c.X}
	}
	return normalizeCells(out)
}

func normalizeCells(cells []Cell) []Cell {
	minX, minY := cells[0].X, cells[0].Y
	for _, c := range cells[1:] {
		minX = min(minX, c.X)
		minY = min(minY, c.Y)
	}
	seen := make(map[Cell]bool, len(cells))
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		n := Cell{X: c.X - minX, Y: c.Y - minY}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
