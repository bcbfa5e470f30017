package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// fpEpsilon keeps the least fit member selectable under fitness-proportional
// selection.
const fpEpsilon = 1.0

// Population is an ordered set of owned states plus the bookkeeping used by
// selection and termination.
//
// A state belongs to exactly one population at a time. Members move between
// populations only through Absorb, which leaves the source empty.
type Population struct {
	members []*State
	version uint64 // bumped on every membership change

	fpProbs   []float64
	fpVersion uint64
	fpValid   bool

	plateau plateau
}

// plateau tracks how many generations a statistic has stayed put.
type plateau struct {
	avgSet       bool
	lastAvg      float64
	avgUnchanged int

	bestSet       bool
	lastBest      int
	bestUnchanged int
}

// NewPopulation returns an empty population.
func NewPopulation() *Population {
	return &Population{}
}

// Size returns the number of members.
func (p *Population) Size() int { return len(p.members) }

// Get returns the i-th member. The population keeps ownership.
func (p *Population) Get(i int) *State { return p.members[i] }

// Members returns the member list in order. The population keeps ownership
// of the states.
func (p *Population) Members() []*State {
	out := make([]*State, len(p.members))
	copy(out, p.members)
	return out
}

// Create fills an empty population with size copies of template.
func (p *Population) Create(size int, template *State) error {
	if len(p.members) != 0 {
		return fmt.Errorf("%w: has %d members", ErrNotEmpty, len(p.members))
	}
	if size < 1 {
		return fmt.Errorf("%w: population size %d", ErrInvalidArgument, size)
	}
	if template == nil {
		return fmt.Errorf("%w: nil template", ErrInvalidArgument)
	}
	p.members = make([]*State, size)
	for i := range p.members {
		p.members[i] = template.Clone()
		p.members[i].owner = p
	}
	p.touch()
	return nil
}

// RandomizeAll gives every member a random layout and recomputes its fitness.
func (p *Population) RandomizeAll(rng *rand.Rand) error {
	if len(p.members) == 0 {
		return ErrEmptyPopulation
	}
	for _, s := range p.members {
		s.RandomizeLayout(rng)
		s.CalcFitness()
	}
	p.touch()
	return nil
}

// Add takes ownership of s. Its fitness must be current and no population,
// p included, may already hold it; Clone a selected parent to keep a copy.
func (p *Population) Add(s *State) error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidArgument)
	}
	if s.owner != nil {
		return fmt.Errorf("%w: state is already owned by a population", ErrInvalidArgument)
	}
	if !s.evaluated {
		return ErrStaleFitness
	}
	s.owner = p
	p.members = append(p.members, s)
	p.touch()
	return nil
}

// Absorb moves every member of src into p. src is left empty.
func (p *Population) Absorb(src *Population) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	if src == p {
		return fmt.Errorf("%w: population cannot absorb itself", ErrInvalidArgument)
	}
	for _, s := range src.members {
		s.owner = p
	}
	p.members = append(p.members, src.members...)
	src.members = nil
	src.touch()
	p.touch()
	return nil
}

// Release drops every member and resets the plateau counters.
func (p *Population) Release() {
	for i, s := range p.members {
		s.owner = nil
		p.members[i] = nil
	}
	p.members = nil
	p.plateau = plateau{}
	p.touch()
}

func (p *Population) touch() {
	p.version++
}

// SetFpProbability computes each member's fitness-proportional selection
// probability from fitness shifted so the least fit member weighs fpEpsilon.
func (p *Population) SetFpProbability() error {
	if len(p.members) == 0 {
		return ErrEmptyPopulation
	}
	minFit := p.members[0].fitness
	for _, s := range p.members[1:] {
		minFit = min(minFit, s.fitness)
	}

	probs := make([]float64, len(p.members))
	var total float64
	for i, s := range p.members {
		probs[i] = float64(s.fitness-minFit) + fpEpsilon
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}

	p.fpProbs = probs
	p.fpVersion = p.version
	p.fpValid = true
	return nil
}

// FpProbabilities returns the selection probabilities for the current members,
// recomputing them if membership changed.
func (p *Population) FpProbabilities() ([]float64, error) {
	if !p.fpValid || p.fpVersion != p.version {
		if err := p.SetFpProbability(); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(p.fpProbs))
	copy(out, p.fpProbs)
	return out, nil
}

// ChooseParentFP draws one member by roulette wheel. The population keeps
// ownership of the returned state.
func (p *Population) ChooseParentFP(rng *rand.Rand) (*State, error) {
	if !p.fpValid || p.fpVersion != p.version {
		if err := p.SetFpProbability(); err != nil {
			return nil, err
		}
	}
	r := rng.Float64()
	var cum float64
	for i, prob := range p.fpProbs {
		cum += prob
		if r < cum {
			return p.members[i], nil
		}
	}
	// Rounding left the cumulative sum just below 1
	return p.members[len(p.members)-1], nil
}

// ChooseParentKTourn draws k members uniformly with replacement and returns
// the fittest, the first drawn winning ties. A tournament as large as the
// population is the whole population, so it returns the fittest member.
func (p *Population) ChooseParentKTourn(rng *rand.Rand, k int) (*State, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: tournament size %d", ErrInvalidArgument, k)
	}
	if len(p.members) == 0 {
		return nil, ErrEmptyPopulation
	}
	if k >= len(p.members) {
		return p.Fittest()
	}
	best := p.members[rng.Intn(len(p.members))]
	for i := 1; i < k; i++ {
		c := p.members[rng.Intn(len(p.members))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best, nil
}

// ChooseParentRandom draws one member uniformly.
func (p *Population) ChooseParentRandom(rng *rand.Rand) (*State, error) {
	if len(p.members) == 0 {
		return nil, ErrEmptyPopulation
	}
	return p.members[rng.Intn(len(p.members))], nil
}

// ReduceByTruncation keeps the target fittest members. Equal fitness keeps
// the original relative order.
func (p *Population) ReduceByTruncation(target int) error {
	if err := p.checkTarget(target); err != nil {
		return err
	}
	sortByFitness(p.members)
	p.truncate(target)
	return nil
}

// ReduceByKTourn keeps target members chosen by repeated k-tournaments among
// the members not yet kept; each tournament's winner survives. Once k reaches
// the number of candidates left, the remainder is ranked instead.
func (p *Population) ReduceByKTourn(rng *rand.Rand, target, k int) error {
	if k < 1 {
		return fmt.Errorf("%w: tournament size %d", ErrInvalidArgument, k)
	}
	if err := p.checkTarget(target); err != nil {
		return err
	}

	remaining := p.Members()
	kept := make([]*State, 0, len(p.members))
	for len(kept) < target {
		need := target - len(kept)
		if k >= len(remaining) {
			sortByFitness(remaining)
			kept = append(kept, remaining[:need]...)
			break
		}
		entrants := rng.Perm(len(remaining))[:k]
		winner := entrants[0]
		for _, j := range entrants[1:] {
			wf, jf := remaining[winner].fitness, remaining[j].fitness
			if jf > wf || (jf == wf && j < winner) {
				winner = j
			}
		}
		kept = append(kept, remaining[winner])
		remaining = append(remaining[:winner], remaining[winner+1:]...)
	}

	for i, s := range p.members {
		s.owner = nil
		p.members[i] = nil
	}
	for _, s := range kept {
		s.owner = p
	}
	p.members = kept
	p.touch()
	return nil
}

func (p *Population) checkTarget(target int) error {
	if len(p.members) == 0 {
		return ErrEmptyPopulation
	}
	if target < 0 || target > len(p.members) {
		return fmt.Errorf("%w: target size %d with %d members", ErrInvalidArgument, target, len(p.members))
	}
	return nil
}

func (p *Population) truncate(target int) {
	for i := target; i < len(p.members); i++ {
		p.members[i].owner = nil
		p.members[i] = nil
	}
	p.members = p.members[:target]
	p.touch()
}

func sortByFitness(states []*State) {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].fitness > states[j].fitness
	})
}

// TermTestNumEvals reports whether the evaluation budget is spent.
func (p *Population) TermTestNumEvals(evals, target int) bool {
	return evals >= target
}

// TermTestAvgFitness records the current average fitness and reports whether
// it has stayed within variance of the previous generation's average for
// target consecutive generations.
func (p *Population) TermTestAvgFitness(target int, variance float64) (bool, error) {
	if target < 1 {
		return false, fmt.Errorf("%w: generations unchanged %d", ErrInvalidArgument, target)
	}
	if variance < 0 {
		return false, fmt.Errorf("%w: variance %.4f", ErrInvalidArgument, variance)
	}
	avg, err := p.AverageFitness()
	if err != nil {
		return false, err
	}
	pl := &p.plateau
	switch {
	case !pl.avgSet:
		pl.avgSet = true
		pl.avgUnchanged = 0
	case math.Abs(avg-pl.lastAvg) <= variance:
		pl.avgUnchanged++
	default:
		pl.avgUnchanged = 0
	}
	pl.lastAvg = avg
	return pl.avgUnchanged >= target, nil
}

// TermTestBestFitness records the current best fitness and reports whether it
// has been exactly equal for target consecutive generations.
func (p *Population) TermTestBestFitness(target int) (bool, error) {
	if target < 1 {
		return false, fmt.Errorf("%w: generations unchanged %d", ErrInvalidArgument, target)
	}
	best, err := p.Fittest()
	if err != nil {
		return false, err
	}
	pl := &p.plateau
	switch {
	case !pl.bestSet:
		pl.bestSet = true
		pl.bestUnchanged = 0
	case best.fitness == pl.lastBest:
		pl.bestUnchanged++
	default:
		pl.bestUnchanged = 0
	}
	pl.lastBest = best.fitness
	return pl.bestUnchanged >= target, nil
}

// UnchangedGenerations returns the current plateau counters for the average
// and best fitness.
func (p *Population) UnchangedGenerations() (avg, best int) {
	return p.plateau.avgUnchanged, p.plateau.bestUnchanged
}

// Fittest returns the member with the highest fitness.
func (p *Population) Fittest() (*State, error) {
	return p.Best(ObjectiveFitness, true)
}

// Best returns the member with the highest (or lowest) value of the given
// objective. The first such member wins ties.
func (p *Population) Best(o Objective, highest bool) (*State, error) {
	if len(p.members) == 0 {
		return nil, ErrEmptyPopulation
	}
	best := p.members[0]
	for _, s := range p.members[1:] {
		v, b := s.Objective(o), best.Objective(o)
		if (highest && v > b) || (!highest && v < b) {
			best = s
		}
	}
	return best, nil
}

// AverageFitness returns the mean fitness of all members.
func (p *Population) AverageFitness() (float64, error) {
	if len(p.members) == 0 {
		return 0, ErrEmptyPopulation
	}
	return stat.Mean(p.fitnesses(), nil), nil
}

// FitnessStdDev returns the sample standard deviation of member fitness.
func (p *Population) FitnessStdDev() (float64, error) {
	if len(p.members) == 0 {
		return 0, ErrEmptyPopulation
	}
	if len(p.members) < 2 {
		return 0, nil
	}
	return stat.StdDev(p.fitnesses(), nil), nil
}

// ParetoFront returns the members not dominated on (length, overlap), both
// minimized, in population order.
func (p *Population) ParetoFront() []*State {
	var front []*State
	for i, s := range p.members {
		dominated := false
		for j, o := range p.members {
			if i == j {
				continue
			}
			if o.length <= s.length && o.overlap <= s.overlap &&
				(o.length < s.length || o.overlap < s.overlap) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, s)
		}
	}
	return front
}

func (p *Population) fitnesses() []float64 {
	out := make([]float64, len(p.members))
	for i, s := range p.members {
		out[i] = float64(s.fitness)
	}
	return out
}
