package engine

import (
	"fmt"
	"math/rand"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// ParentSelector picks one parent. The population keeps ownership.
type ParentSelector interface {
	Select(rng *rand.Rand, pop *Population) (*State, error)
}

// Recombiner writes a crossover of a and b into child.
type Recombiner interface {
	Recombine(rng *rand.Rand, child, a, b *State) error
}

// Mutator perturbs a state in place.
type Mutator interface {
	Mutate(rng *rand.Rand, s *State) error
}

// SurvivorSelector shrinks the population to target members.
type SurvivorSelector interface {
	Reduce(rng *rand.Rand, pop *Population, target int) error
}

// Terminator decides once per generation whether a run is finished.
type Terminator interface {
	Done(pop *Population, evals int) (bool, error)
	Name() string
}

// FitnessProportional selects by roulette wheel.
type FitnessProportional struct{}

func (FitnessProportional) Select(rng *rand.Rand, pop *Population) (*State, error) {
	return pop.ChooseParentFP(rng)
}

// KTournament selects the fittest of K draws with replacement.
type KTournament struct {
	K int
}

func (t KTournament) Select(rng *rand.Rand, pop *Population) (*State, error) {
	return pop.ChooseParentKTourn(rng, t.K)
}

// RandomParent selects uniformly.
type RandomParent struct{}

func (RandomParent) Select(rng *rand.Rand, pop *Population) (*State, error) {
	return pop.ChooseParentRandom(rng)
}

// NPoint is n-point crossover.
type NPoint struct {
	Points int
}

func (n NPoint) Recombine(rng *rand.Rand, child, a, b *State) error {
	return child.NPointCrossover(rng, a, b, n.Points)
}

// Uniform is uniform crossover taking each gene from the first parent with
// probability Prob.
type Uniform struct {
	Prob float64
}

func (u Uniform) Recombine(rng *rand.Rand, child, a, b *State) error {
	return child.UniformCrossover(rng, a, b, u.Prob)
}

// RandomReset is random-reset mutation.
type RandomReset struct{}

func (RandomReset) Mutate(rng *rand.Rand, s *State) error {
	s.RandResetMutate(rng)
	return nil
}

// Creep is creep mutation bounded by Distance cells.
type Creep struct {
	Distance int
}

func (c Creep) Mutate(rng *rand.Rand, s *State) error {
	return s.CreepMutate(rng, c.Distance)
}

// Truncation keeps the fittest members.
type Truncation struct{}

func (Truncation) Reduce(_ *rand.Rand, pop *Population, target int) error {
	return pop.ReduceByTruncation(target)
}

// SurvivorTournament keeps the winners of repeated K-tournaments.
type SurvivorTournament struct {
	K int
}

func (t SurvivorTournament) Reduce(rng *rand.Rand, pop *Population, target int) error {
	return pop.ReduceByKTourn(rng, target, t.K)
}

// EvalBudget stops once Evals fitness evaluations have been spent.
type EvalBudget struct {
	Evals int
}

func (e EvalBudget) Done(pop *Population, evals int) (bool, error) {
	return pop.TermTestNumEvals(evals, e.Evals), nil
}

func (EvalBudget) Name() string { return string(model.TerminationNumEvals) }

// AvgPlateau stops when the average fitness stays within Variance for
// Generations consecutive generations.
type AvgPlateau struct {
	Generations int
	Variance    float64
}

func (a AvgPlateau) Done(pop *Population, _ int) (bool, error) {
	return pop.TermTestAvgFitness(a.Generations, a.Variance)
}

func (AvgPlateau) Name() string { return string(model.TerminationAvgFitness) }

// BestPlateau stops when the best fitness is unchanged for Generations
// consecutive generations.
type BestPlateau struct {
	Generations int
}

func (b BestPlateau) Done(pop *Population, _ int) (bool, error) {
	return pop.TermTestBestFitness(b.Generations)
}

func (BestPlateau) Name() string { return string(model.TerminationBestFitness) }

// Strategies is the set of operators a run uses, configured once.
type Strategies struct {
	Parent       ParentSelector
	Recombine    Recombiner
	Mutate       Mutator
	MutationRate float64
	Survivor     SurvivorSelector
	Terminate    Terminator
}

// NewStrategies builds the operators named by cfg.
func NewStrategies(cfg model.EvolutionConfig) (Strategies, error) {
	var st Strategies

	switch cfg.ParentSelection {
	case model.ParentFitnessProportional:
		st.Parent = FitnessProportional{}
	case model.ParentKTournament:
		if cfg.ParentTournamentSize < 1 {
			return st, fmt.Errorf("%w: parent tournament size %d", ErrInvalidArgument, cfg.ParentTournamentSize)
		}
		st.Parent = KTournament{K: cfg.ParentTournamentSize}
	case model.ParentRandom:
		st.Parent = RandomParent{}
	default:
		return st, fmt.Errorf("%w: unknown parent selection %q", ErrInvalidArgument, cfg.ParentSelection)
	}

	switch cfg.Recombination {
	case model.RecombinationNPoint:
		if cfg.Crossovers < 0 {
			return st, fmt.Errorf("%w: crossovers %d", ErrInvalidArgument, cfg.Crossovers)
		}
		st.Recombine = NPoint{Points: cfg.Crossovers}
	case model.RecombinationUniform:
		if cfg.UniformProb < 0 || cfg.UniformProb > 1 {
			return st, fmt.Errorf("%w: uniform probability %.4f", ErrInvalidArgument, cfg.UniformProb)
		}
		st.Recombine = Uniform{Prob: cfg.UniformProb}
	default:
		return st, fmt.Errorf("%w: unknown recombination %q", ErrInvalidArgument, cfg.Recombination)
	}

	switch cfg.Mutation {
	case model.MutationRandomReset:
		st.Mutate = RandomReset{}
	case model.MutationCreep:
		if cfg.CreepDistance < 0 {
			return st, fmt.Errorf("%w: creep distance %d", ErrInvalidArgument, cfg.CreepDistance)
		}
		st.Mutate = Creep{Distance: cfg.CreepDistance}
	default:
		return st, fmt.Errorf("%w: unknown mutation %q", ErrInvalidArgument, cfg.Mutation)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return st, fmt.Errorf("%w: mutation rate %.4f", ErrInvalidArgument, cfg.MutationRate)
	}
	st.MutationRate = cfg.MutationRate

	switch cfg.SurvivorSelection {
	case model.SurvivorTruncation:
		st.Survivor = Truncation{}
	case model.SurvivorKTournament:
		if cfg.SurvivorTournamentSize < 1 {
			return st, fmt.Errorf("%w: survivor tournament size %d", ErrInvalidArgument, cfg.SurvivorTournamentSize)
		}
		st.Survivor = SurvivorTournament{K: cfg.SurvivorTournamentSize}
	default:
		return st, fmt.Errorf("%w: unknown survivor selection %q", ErrInvalidArgument, cfg.SurvivorSelection)
	}

	switch cfg.Termination {
	case model.TerminationNumEvals:
		st.Terminate = EvalBudget{Evals: cfg.FitnessEvals}
	case model.TerminationAvgFitness:
		st.Terminate = AvgPlateau{Generations: cfg.TermGensUnchanged, Variance: cfg.TermAvgVariance}
	case model.TerminationBestFitness:
		st.Terminate = BestPlateau{Generations: cfg.TermGensUnchanged}
	default:
		return st, fmt.Errorf("%w: unknown termination %q", ErrInvalidArgument, cfg.Termination)
	}
	if cfg.Termination != model.TerminationNumEvals && cfg.TermGensUnchanged < 1 {
		return st, fmt.Errorf("%w: generations unchanged %d", ErrInvalidArgument, cfg.TermGensUnchanged)
	}

	return st, nil
}

// ShouldMutate draws the mutation gate at MutationDigits precision. A zero
// rate never mutates.
func (st Strategies) ShouldMutate(rng *rand.Rand) bool {
	return st.MutationRate > 0 && ScaledProb(rng, MutationDigits) <= st.MutationRate
}

// Breed builds one offspring from the template: two parents, recombination,
// an optional mutation and a fresh fitness.
func (st Strategies) Breed(rng *rand.Rand, pop *Population, template *State) (*State, error) {
	a, err := st.Parent.Select(rng, pop)
	if err != nil {
		return nil, fmt.Errorf("failed to select first parent: %w", err)
	}
	b, err := st.Parent.Select(rng, pop)
	if err != nil {
		return nil, fmt.Errorf("failed to select second parent: %w", err)
	}
	child := template.Clone()
	if err := st.Recombine.Recombine(rng, child, a, b); err != nil {
		return nil, fmt.Errorf("failed to recombine: %w", err)
	}
	if st.ShouldMutate(rng) {
		if err := st.Mutate.Mutate(rng, child); err != nil {
			return nil, fmt.Errorf("failed to mutate: %w", err)
		}
	}
	child.CalcFitness()
	return child, nil
}
