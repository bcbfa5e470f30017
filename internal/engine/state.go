package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// randomPlacementAttempts bounds the retries used to find an overlap-free
// spot for a shape while randomizing a layout.
const randomPlacementAttempts = 100

// Objective selects the value Best orders members by.
type Objective int

const (
	ObjectiveFitness Objective = iota // Higher is better
	ObjectiveLength                   // Used sheet length
	ObjectiveOverlap                  // Overlapping cells
)

func (o Objective) String() string {
	switch o {
	case ObjectiveLength:
		return "length"
	case ObjectiveOverlap:
		return "overlap"
	default:
		return "fitness"
	}
}

// State is a candidate solution: one placement per shape plus the fitness
// derived from it. The layout is owned by the state and never shared.
type State struct {
	problem *model.Problem
	layout  model.Layout

	fitness   int
	length    int
	overlap   int
	evaluated bool

	owner *Population // nil while no population holds the state
}

// NewState creates a template state for the problem. Every shape sits at the
// origin in its first orientation that fits the sheet.
func NewState(problem *model.Problem) *State {
	layout := make(model.Layout, len(problem.Shapes))
	for i := range layout {
		for rot := 0; rot < model.NumRotations; rot++ {
			if _, _, ok := problem.Domain(i, rot); ok {
				layout[i].Rotation = rot
				break
			}
		}
	}
	return &State{problem: problem, layout: layout}
}

// Clone returns a deep copy of the state, including its fitness. The copy
// belongs to no population.
func (s *State) Clone() *State {
	cp := *s
	cp.layout = s.layout.Clone()
	cp.owner = nil
	return &cp
}

// Fitness returns the last computed fitness. It is only meaningful when
// Evaluated reports true.
func (s *State) Fitness() int { return s.fitness }

// Length returns the used sheet length from the last evaluation.
func (s *State) Length() int { return s.length }

// Overlap returns the overlapping cell count from the last evaluation.
func (s *State) Overlap() int { return s.overlap }

// Evaluated reports whether the fitness reflects the current layout.
func (s *State) Evaluated() bool { return s.evaluated }

// Genes returns the number of genes in the encoding.
func (s *State) Genes() int { return len(s.layout) }

// Layout returns a copy of the current layout.
func (s *State) Layout() model.Layout { return s.layout.Clone() }

// Objective returns the value of the given ordering parameter.
func (s *State) Objective(o Objective) int {
	switch o {
	case ObjectiveLength:
		return s.length
	case ObjectiveOverlap:
		return s.overlap
	default:
		return s.fitness
	}
}

// Solution detaches the scored layout from the search.
func (s *State) Solution() model.Solution {
	return model.Solution{
		Layout:  s.layout.Clone(),
		Fitness: s.fitness,
		Length:  s.length,
		Overlap: s.overlap,
	}
}

// CalcFitness recomputes fitness from the current layout:
// the unused part of the maximum sheet length, less a penalty per
// overlapping cell.
func (s *State) CalcFitness() {
	occ := s.problem.Occupy(s.layout)
	s.length = occ.Length
	s.overlap = occ.Overlap
	s.fitness = s.problem.MaxLength() - occ.Length - s.problem.Penalty()*occ.Overlap
	s.evaluated = true
}

// RandomizeLayout gives every shape a random rotation and position, retrying
// a bounded number of times to avoid shapes already placed.
func (s *State) RandomizeLayout(rng *rand.Rand) {
	occupied := make(map[model.Cell]bool, s.problem.TotalArea())
	for i := range s.layout {
		var pl model.Placement
		for attempt := 0; attempt < randomPlacementAttempts; attempt++ {
			pl = s.randomPlacement(rng, i)
			if !s.collides(i, pl, occupied) {
				break
			}
		}
		s.layout[i] = pl
		o := s.problem.Shapes[i].Orientation(pl.Rotation)
		for _, c := range o.Cells {
			occupied[model.Cell{X: pl.X + c.X, Y: pl.Y + c.Y}] = true
		}
	}
	s.evaluated = false
}

// NPointCrossover fills s with segments alternating between a and b, split at
// numPoints distinct cut positions. Segments start with a, so zero points
// copies a outright. Fitness must be recomputed afterwards.
func (s *State) NPointCrossover(rng *rand.Rand, a, b *State, numPoints int) error {
	if err := s.checkParents(a, b); err != nil {
		return err
	}
	n := len(s.layout)
	if numPoints < 0 || numPoints > n-1 {
		return fmt.Errorf("%w: crossover points %d outside [0, %d]", ErrInvalidArgument, numPoints, n-1)
	}

	cuts := rng.Perm(n - 1)[:numPoints]
	for i := range cuts {
		cuts[i]++
	}
	sort.Ints(cuts)

	fromA := true
	next := 0
	for g := 0; g < n; g++ {
		if next < len(cuts) && g == cuts[next] {
			fromA = !fromA
			next++
		}
		if fromA {
			s.layout[g] = a.layout[g]
		} else {
			s.layout[g] = b.layout[g]
		}
	}
	s.evaluated = false
	return nil
}

// UniformCrossover fills s gene by gene, taking from a with probability prob
// and from b otherwise.
func (s *State) UniformCrossover(rng *rand.Rand, a, b *State, prob float64) error {
	if err := s.checkParents(a, b); err != nil {
		return err
	}
	if prob < 0 || prob > 1 {
		return fmt.Errorf("%w: uniform crossover probability %.4f outside [0, 1]", ErrInvalidArgument, prob)
	}
	for g := range s.layout {
		if rng.Float64() < prob {
			s.layout[g] = a.layout[g]
		} else {
			s.layout[g] = b.layout[g]
		}
	}
	s.evaluated = false
	return nil
}

// RandResetMutate replaces one random gene with a fresh random placement.
func (s *State) RandResetMutate(rng *rand.Rand) {
	g := rng.Intn(len(s.layout))
	s.layout[g] = s.randomPlacement(rng, g)
	s.evaluated = false
}

// CreepMutate shifts one random gene by up to distance cells along each axis,
// clamped to the sheet.
func (s *State) CreepMutate(rng *rand.Rand, distance int) error {
	if distance < 0 {
		return fmt.Errorf("%w: creep distance %d is negative", ErrInvalidArgument, distance)
	}
	g := rng.Intn(len(s.layout))
	pl := s.layout[g]
	dx := rng.Intn(2*distance+1) - distance
	dy := rng.Intn(2*distance+1) - distance
	maxX, maxY, _ := s.problem.Domain(g, pl.Rotation)
	pl.X = clamp(pl.X+dx, 0, maxX)
	pl.Y = clamp(pl.Y+dy, 0, maxY)
	s.layout[g] = pl
	s.evaluated = false
	return nil
}

func (s *State) checkParents(a, b *State) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil parent", ErrInvalidArgument)
	}
	if s == a || s == b {
		return fmt.Errorf("%w: child must not be one of its parents", ErrInvalidArgument)
	}
	if len(a.layout) != len(s.layout) || len(b.layout) != len(s.layout) {
		return fmt.Errorf("%w: parents have %d and %d genes, child has %d",
			ErrInvalidArgument, len(a.layout), len(b.layout), len(s.layout))
	}
	return nil
}

// randomPlacement draws a rotation that fits the sheet, then a position
// inside that rotation's domain.
func (s *State) randomPlacement(rng *rand.Rand, i int) model.Placement {
	start := rng.Intn(model.NumRotations)
	for k := 0; k < model.NumRotations; k++ {
		rot := (start + k) % model.NumRotations
		maxX, maxY, ok := s.problem.Domain(i, rot)
		if !ok {
			continue
		}
		return model.Placement{
			X:        rng.Intn(maxX + 1),
			Y:        rng.Intn(maxY + 1),
			Rotation: rot,
		}
	}
	// Unreachable for a validated problem
	return s.layout[i]
}

func (s *State) collides(i int, pl model.Placement, occupied map[model.Cell]bool) bool {
	o := s.problem.Shapes[i].Orientation(pl.Rotation)
	for _, c := range o.Cells {
		if occupied[model.Cell{X: pl.X + c.X, Y: pl.Y + c.Y}] {
			return true
		}
	}
	return false
}
