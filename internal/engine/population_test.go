package engine

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeScoredPopulation returns a population whose members carry the given
// fitness values, in order.
func makeScoredPopulation(t *testing.T, fitness ...int) *Population {
	t.Helper()
	p := makeDotProblem(t, 3, 3)
	pop := NewPopulation()
	for _, f := range fitness {
		s := NewState(p)
		s.CalcFitness()
		s.fitness = f
		require.NoError(t, pop.Add(s))
	}
	return pop
}

func fitnessOf(states []*State) []int {
	out := make([]int, len(states))
	for i, s := range states {
		out[i] = s.Fitness()
	}
	return out
}

func TestCreate_CopiesTemplate(t *testing.T) {
	p := makeTestProblem(t)
	template := NewState(p)
	pop := NewPopulation()

	require.NoError(t, pop.Create(5, template))
	assert.Equal(t, 5, pop.Size())
	for i := 0; i < pop.Size(); i++ {
		assert.NotSame(t, template, pop.Get(i))
		assert.Equal(t, template.layout, pop.Get(i).layout)
	}

	pop.Get(0).layout[0].X = 7
	assert.Equal(t, 0, template.layout[0].X, "members never alias the template")
}

func TestCreate_Preconditions(t *testing.T) {
	template := NewState(makeTestProblem(t))
	pop := NewPopulation()

	assert.ErrorIs(t, pop.Create(0, template), ErrInvalidArgument)
	assert.ErrorIs(t, pop.Create(3, nil), ErrInvalidArgument)

	require.NoError(t, pop.Create(3, template))
	assert.ErrorIs(t, pop.Create(3, template), ErrNotEmpty)
}

func TestRandomizeAll_EvaluatesEveryMember(t *testing.T) {
	pop := NewPopulation()
	require.NoError(t, pop.Create(10, NewState(makeTestProblem(t))))
	require.NoError(t, pop.RandomizeAll(newTestRand()))

	for _, s := range pop.Members() {
		assert.True(t, s.Evaluated())
		assertInDomain(t, s)
	}
	assert.ErrorIs(t, NewPopulation().RandomizeAll(newTestRand()), ErrEmptyPopulation)
}

func TestAdd_RejectsStaleFitness(t *testing.T) {
	pop := NewPopulation()
	s := NewState(makeTestProblem(t))

	assert.ErrorIs(t, pop.Add(s), ErrStaleFitness)
	assert.ErrorIs(t, pop.Add(nil), ErrInvalidArgument)

	s.CalcFitness()
	require.NoError(t, pop.Add(s))
	assert.Equal(t, 1, pop.Size())
}

func TestAdd_RejectsOwnedState(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2, 3)
	other := makeScoredPopulation(t, 4)
	held := pop.Get(1)

	assert.ErrorIs(t, other.Add(held), ErrInvalidArgument)
	assert.ErrorIs(t, pop.Add(held), ErrInvalidArgument)
	assert.Equal(t, 3, pop.Size())
	assert.Equal(t, 1, other.Size())

	// A copy of a member is a new state and can be held elsewhere
	require.NoError(t, other.Add(held.Clone()))
	assert.Equal(t, 2, other.Size())

	weakest := pop.Get(0)
	require.NoError(t, pop.ReduceByTruncation(2))
	assert.Equal(t, []int{3, 2}, fitnessOf(pop.Members()))
	assert.NotSame(t, pop.Get(0), pop.Get(1))

	// Reduction frees the states it drops and keeps the rest
	require.NoError(t, other.Add(weakest))
	assert.ErrorIs(t, other.Add(held), ErrInvalidArgument)
}

func TestReduceByKTourn_FreesDroppedStates(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2, 3, 4, 5)
	all := pop.Members()

	require.NoError(t, pop.ReduceByKTourn(newTestRand(), 2, 5))
	require.Equal(t, 2, pop.Size())

	other := NewPopulation()
	for _, s := range all {
		if s == pop.Get(0) || s == pop.Get(1) {
			assert.ErrorIs(t, other.Add(s), ErrInvalidArgument)
			continue
		}
		assert.NoError(t, other.Add(s))
	}
	assert.Equal(t, 3, other.Size())
}

func TestAdd_ReleasedStateIsFree(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2)
	s := pop.Get(0)

	pop.Release()
	other := NewPopulation()
	require.NoError(t, other.Add(s))
	assert.ErrorIs(t, pop.Add(s), ErrInvalidArgument)
}

func TestCreateRelease_OwnershipDiscipline(t *testing.T) {
	pop := NewPopulation()
	require.NoError(t, pop.Create(5, NewState(makeTestProblem(t))))

	pop.Release()
	assert.Equal(t, 0, pop.Size())

	// Releasing again is a no-op, and the population can be reseeded
	pop.Release()
	assert.Equal(t, 0, pop.Size())
	require.NoError(t, pop.Create(5, NewState(makeTestProblem(t))))
}

func TestAbsorb_MovesOwnership(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2)
	offspring := makeScoredPopulation(t, 3, 4, 5)
	moved := offspring.Members()

	require.NoError(t, pop.Absorb(offspring))

	assert.Equal(t, 5, pop.Size())
	assert.Equal(t, 0, offspring.Size())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, fitnessOf(pop.Members()))
	for i, s := range moved {
		assert.Same(t, s, pop.Get(2+i))
	}

	// The drained buffer is reusable and shares nothing with pop
	offspring.Release()
	assert.Equal(t, 5, pop.Size())

	assert.ErrorIs(t, pop.Absorb(pop), ErrInvalidArgument)
	assert.ErrorIs(t, pop.Absorb(nil), ErrInvalidArgument)
	assert.Equal(t, 5, pop.Size())

	// Absorbed members belong to pop now
	assert.ErrorIs(t, offspring.Add(moved[0]), ErrInvalidArgument)
}

func TestAverageFitness_IsArithmeticMean(t *testing.T) {
	pop := makeScoredPopulation(t, 3, -4, 10, 7)
	avg, err := pop.AverageFitness()
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	pop = makeScoredPopulation(t, 5)
	avg, err = pop.AverageFitness()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, avg, 1e-9)

	_, err = NewPopulation().AverageFitness()
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestFitnessStdDev(t *testing.T) {
	sd, err := makeScoredPopulation(t, 2, 4, 4, 4, 5, 5, 7, 9).FitnessStdDev()
	require.NoError(t, err)
	assert.InDelta(t, 2.138, sd, 0.001)

	sd, err = makeScoredPopulation(t, 5).FitnessStdDev()
	require.NoError(t, err)
	assert.Equal(t, 0.0, sd)
}

func TestReduceByTruncation_KeepsFittest(t *testing.T) {
	pop := makeScoredPopulation(t, 5, 1, 9, 3, 7, 2)
	all := pop.Members()

	require.NoError(t, pop.ReduceByTruncation(3))

	assert.Equal(t, 3, pop.Size())
	assert.Equal(t, []int{9, 7, 5}, fitnessOf(pop.Members()))

	kept := map[*State]bool{}
	for _, s := range pop.Members() {
		kept[s] = true
	}
	for _, s := range all {
		if kept[s] {
			continue
		}
		for _, k := range pop.Members() {
			assert.GreaterOrEqual(t, k.Fitness(), s.Fitness())
		}
	}
}

func TestReduceByTruncation_StableOnTies(t *testing.T) {
	pop := makeScoredPopulation(t, 4, 8, 4, 4)
	all := pop.Members()

	require.NoError(t, pop.ReduceByTruncation(3))

	assert.Same(t, all[1], pop.Get(0))
	assert.Same(t, all[0], pop.Get(1))
	assert.Same(t, all[2], pop.Get(2))
}

func TestReduceByTruncation_Preconditions(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2)
	assert.ErrorIs(t, pop.ReduceByTruncation(3), ErrInvalidArgument)
	assert.ErrorIs(t, pop.ReduceByTruncation(-1), ErrInvalidArgument)
	assert.ErrorIs(t, NewPopulation().ReduceByTruncation(0), ErrEmptyPopulation)

	require.NoError(t, pop.ReduceByTruncation(2))
	assert.Equal(t, 2, pop.Size())
}

func TestReduceByKTourn_ExactSizeNoDuplicates(t *testing.T) {
	rng := newTestRand()
	for trial := 0; trial < 20; trial++ {
		pop := makeScoredPopulation(t, 5, 1, 9, 3, 7, 2, 8, 6, 4, 0)
		all := map[*State]bool{}
		for _, s := range pop.Members() {
			all[s] = true
		}

		require.NoError(t, pop.ReduceByKTourn(rng, 6, 3))

		assert.Equal(t, 6, pop.Size())
		seen := map[*State]bool{}
		for _, s := range pop.Members() {
			assert.True(t, all[s], "survivor must come from the population")
			assert.False(t, seen[s], "survivor kept twice")
			seen[s] = true
		}
	}
}

func TestReduceByKTourn_FullTournamentIsRanking(t *testing.T) {
	pop := makeScoredPopulation(t, 5, 1, 9, 3, 7)
	require.NoError(t, pop.ReduceByKTourn(newTestRand(), 3, 5))
	assert.Equal(t, []int{9, 7, 5}, fitnessOf(pop.Members()))

	pop = makeScoredPopulation(t, 5, 1, 9, 3, 7)
	require.NoError(t, pop.ReduceByKTourn(newTestRand(), 2, 100))
	assert.Equal(t, []int{9, 7}, fitnessOf(pop.Members()))
}

func TestReduceByKTourn_FavoursFitter(t *testing.T) {
	rng := newTestRand()
	keptBest := 0
	for trial := 0; trial < 200; trial++ {
		pop := makeScoredPopulation(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 100)
		require.NoError(t, pop.ReduceByKTourn(rng, 5, 2))
		if best, _ := pop.Fittest(); best.Fitness() == 100 {
			keptBest++
		}
	}
	// The best member wins every tournament it enters, which happens in
	// roughly 78% of reductions
	assert.Greater(t, keptBest, 130)
}

func TestReduceByKTourn_Preconditions(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2, 3)
	rng := newTestRand()
	assert.ErrorIs(t, pop.ReduceByKTourn(rng, 2, 0), ErrInvalidArgument)
	assert.ErrorIs(t, pop.ReduceByKTourn(rng, 4, 2), ErrInvalidArgument)
	assert.ErrorIs(t, NewPopulation().ReduceByKTourn(rng, 0, 2), ErrEmptyPopulation)
}

func TestSetFpProbability_SumsToOne(t *testing.T) {
	pop := makeScoredPopulation(t, -5, 0, 5, 10)
	require.NoError(t, pop.SetFpProbability())

	probs, err := pop.FpProbabilities()
	require.NoError(t, err)
	require.Len(t, probs, 4)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// Weights are 1, 6, 11, 16 out of 34
	assert.InDelta(t, 1.0/34, probs[0], 1e-9)
	assert.InDelta(t, 16.0/34, probs[3], 1e-9)

	assert.ErrorIs(t, NewPopulation().SetFpProbability(), ErrEmptyPopulation)
}

func TestChooseParentFP_ConvergesToProbability(t *testing.T) {
	pop := makeScoredPopulation(t, 0, 0, 0, 100)
	dominant := pop.Get(3)
	rng := newTestRand()

	const draws = 20000
	hits := 0
	for i := 0; i < draws; i++ {
		s, err := pop.ChooseParentFP(rng)
		require.NoError(t, err)
		if s == dominant {
			hits++
		}
	}
	assert.InDelta(t, 101.0/104.0, float64(hits)/draws, 0.01)
}

func TestChooseParentFP_RecomputesAfterMembershipChange(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 1)
	require.NoError(t, pop.SetFpProbability())

	extra := makeScoredPopulation(t, 1000)
	newcomer := extra.Get(0)
	require.NoError(t, pop.Absorb(extra))

	probs, err := pop.FpProbabilities()
	require.NoError(t, err)
	assert.Len(t, probs, 3)

	rng := newTestRand()
	hits := 0
	for i := 0; i < 1000; i++ {
		s, err := pop.ChooseParentFP(rng)
		require.NoError(t, err)
		if s == newcomer {
			hits++
		}
	}
	assert.Greater(t, hits, 950)

	_, err = NewPopulation().ChooseParentFP(rng)
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestChooseParentKTourn_FullSizeReturnsGlobalBest(t *testing.T) {
	pop := makeScoredPopulation(t, 3, 8, 1, 8, 5)
	rng := newTestRand()

	for i := 0; i < 50; i++ {
		s, err := pop.ChooseParentKTourn(rng, pop.Size())
		require.NoError(t, err)
		assert.Same(t, pop.Get(1), s, "first of the tied best wins")
	}
}

func TestChooseParentKTourn_SizeOneIsUniform(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2, 3, 4)
	rng := newTestRand()
	counts := map[int]int{}
	for i := 0; i < 4000; i++ {
		s, err := pop.ChooseParentKTourn(rng, 1)
		require.NoError(t, err)
		counts[s.Fitness()]++
	}
	for f := 1; f <= 4; f++ {
		assert.InDelta(t, 1000, counts[f], 150)
	}
}

func TestChooseParentKTourn_Preconditions(t *testing.T) {
	rng := newTestRand()
	pop := makeScoredPopulation(t, 1, 2)

	_, err := pop.ChooseParentKTourn(rng, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	s, err := pop.ChooseParentKTourn(rng, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Fitness())

	_, err = NewPopulation().ChooseParentKTourn(rng, 2)
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestChooseParentRandom(t *testing.T) {
	pop := makeScoredPopulation(t, 1, 2)
	s, err := pop.ChooseParentRandom(newTestRand())
	require.NoError(t, err)
	assert.Contains(t, pop.Members(), s)

	_, err = NewPopulation().ChooseParentRandom(newTestRand())
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

// setBest makes the population's single member carry the given fitness.
func setBest(pop *Population, f int) {
	pop.Get(0).fitness = f
}

func TestTermTestBestFitness_PlateauCounting(t *testing.T) {
	pop := makeScoredPopulation(t, 0)

	var done []bool
	for _, f := range []int{10, 10, 10, 12} {
		setBest(pop, f)
		d, err := pop.TermTestBestFitness(3)
		require.NoError(t, err)
		done = append(done, d)
	}
	assert.Equal(t, []bool{false, false, false, false}, done)
	_, best := pop.UnchangedGenerations()
	assert.Equal(t, 0, best, "a new best resets the counter")

	for _, f := range []int{12, 12} {
		setBest(pop, f)
		d, err := pop.TermTestBestFitness(3)
		require.NoError(t, err)
		assert.False(t, d)
	}
	setBest(pop, 12)
	d, err := pop.TermTestBestFitness(3)
	require.NoError(t, err)
	assert.True(t, d, "three unchanged generations after the first 12")
}

func TestTermTestBestFitness_Preconditions(t *testing.T) {
	_, err := makeScoredPopulation(t, 1).TermTestBestFitness(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewPopulation().TermTestBestFitness(1)
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestTermTestAvgFitness_WithinVariance(t *testing.T) {
	pop := makeScoredPopulation(t, 0)

	var done []bool
	for _, f := range []int{100, 101, 99, 110, 111, 112} {
		setBest(pop, f)
		d, err := pop.TermTestAvgFitness(2, 2.0)
		require.NoError(t, err)
		done = append(done, d)
	}
	// 100 sets, 101 and 99 are within 2, 110 resets, 111 and 112 count again
	assert.Equal(t, []bool{false, false, true, false, false, true}, done)
}

func TestTermTestAvgFitness_Preconditions(t *testing.T) {
	pop := makeScoredPopulation(t, 1)
	_, err := pop.TermTestAvgFitness(0, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = pop.TermTestAvgFitness(1, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewPopulation().TermTestAvgFitness(1, 1)
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestTermTestNumEvals(t *testing.T) {
	pop := NewPopulation()
	assert.False(t, pop.TermTestNumEvals(99, 100))
	assert.True(t, pop.TermTestNumEvals(100, 100))
}

func TestRelease_ResetsPlateau(t *testing.T) {
	pop := makeScoredPopulation(t, 5)
	for i := 0; i < 3; i++ {
		_, err := pop.TermTestBestFitness(10)
		require.NoError(t, err)
	}
	_, best := pop.UnchangedGenerations()
	assert.Equal(t, 2, best)

	pop.Release()
	_, best = pop.UnchangedGenerations()
	assert.Equal(t, 0, best)
}

func TestBest_ByObjective(t *testing.T) {
	pop := makeScoredPopulation(t, 4, 9, 9, 1)
	pop.Get(0).length, pop.Get(1).length, pop.Get(2).length, pop.Get(3).length = 5, 3, 3, 8

	s, err := pop.Fittest()
	require.NoError(t, err)
	assert.Same(t, pop.Get(1), s)

	s, err = pop.Best(ObjectiveFitness, false)
	require.NoError(t, err)
	assert.Same(t, pop.Get(3), s)

	s, err = pop.Best(ObjectiveLength, false)
	require.NoError(t, err)
	assert.Same(t, pop.Get(1), s)

	s, err = pop.Best(ObjectiveLength, true)
	require.NoError(t, err)
	assert.Same(t, pop.Get(3), s)

	_, err = NewPopulation().Fittest()
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestParetoFront(t *testing.T) {
	pop := makeScoredPopulation(t, 0, 0, 0, 0)
	set := func(i, length, overlap int) {
		pop.Get(i).length = length
		pop.Get(i).overlap = overlap
	}
	set(0, 5, 0)
	set(1, 3, 2)
	set(2, 6, 1) // dominated by 0
	set(3, 3, 2) // equal to 1, not dominated

	front := pop.ParetoFront()
	assert.Equal(t, []*State{pop.Get(0), pop.Get(1), pop.Get(3)}, front)
}

// TestOneGeneration_EndToEnd seeds four identical templates, breeds two
// offspring with fitness-proportional parents and one-point crossover, and
// truncates back to four.
func TestOneGeneration_EndToEnd(t *testing.T) {
	p := makeTestProblem(t)
	rng := rand.New(rand.NewSource(7))

	cfg := model.DefaultEvolutionConfig()
	cfg.ParentSelection = model.ParentFitnessProportional
	cfg.Recombination = model.RecombinationNPoint
	cfg.Crossovers = 1
	cfg.MutationRate = 0
	cfg.SurvivorSelection = model.SurvivorTruncation
	st, err := NewStrategies(cfg)
	require.NoError(t, err)

	template := NewState(p)
	pop := NewPopulation()
	offspring := NewPopulation()
	require.NoError(t, pop.Create(4, template))
	require.NoError(t, pop.RandomizeAll(rng))

	for i := 0; i < 2; i++ {
		child, err := st.Breed(rng, pop, template)
		require.NoError(t, err)
		require.NoError(t, offspring.Add(child))
	}
	require.NoError(t, pop.Absorb(offspring))
	require.Equal(t, 6, pop.Size())

	merged := fitnessOf(pop.Members())
	sort.Sort(sort.Reverse(sort.IntSlice(merged)))

	require.NoError(t, st.Survivor.Reduce(rng, pop, 4))

	assert.Equal(t, 4, pop.Size())
	assert.Equal(t, 0, offspring.Size())
	got := fitnessOf(pop.Members())
	assert.Equal(t, merged[:4], got)
	assert.Contains(t, got, merged[0])
	assert.Contains(t, got, merged[1])
}
