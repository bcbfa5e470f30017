package engine

import (
	"testing"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStrategies_Variants(t *testing.T) {
	cfg := model.DefaultEvolutionConfig()

	cfg.ParentSelection = model.ParentFitnessProportional
	cfg.Recombination = model.RecombinationUniform
	cfg.UniformProb = 0.3
	cfg.Mutation = model.MutationRandomReset
	cfg.SurvivorSelection = model.SurvivorKTournament
	cfg.SurvivorTournamentSize = 5
	cfg.Termination = model.TerminationAvgFitness
	cfg.TermGensUnchanged = 7
	cfg.TermAvgVariance = 1.5

	st, err := NewStrategies(cfg)
	require.NoError(t, err)
	assert.Equal(t, FitnessProportional{}, st.Parent)
	assert.Equal(t, Uniform{Prob: 0.3}, st.Recombine)
	assert.Equal(t, RandomReset{}, st.Mutate)
	assert.Equal(t, SurvivorTournament{K: 5}, st.Survivor)
	assert.Equal(t, AvgPlateau{Generations: 7, Variance: 1.5}, st.Terminate)
	assert.Equal(t, "avg_fitness", st.Terminate.Name())

	cfg.ParentSelection = model.ParentRandom
	cfg.Recombination = model.RecombinationNPoint
	cfg.Crossovers = 2
	cfg.Mutation = model.MutationCreep
	cfg.CreepDistance = 4
	cfg.SurvivorSelection = model.SurvivorTruncation
	cfg.Termination = model.TerminationNumEvals
	cfg.FitnessEvals = 500

	st, err = NewStrategies(cfg)
	require.NoError(t, err)
	assert.Equal(t, RandomParent{}, st.Parent)
	assert.Equal(t, NPoint{Points: 2}, st.Recombine)
	assert.Equal(t, Creep{Distance: 4}, st.Mutate)
	assert.Equal(t, Truncation{}, st.Survivor)
	assert.Equal(t, EvalBudget{Evals: 500}, st.Terminate)
}

func TestNewStrategies_Rejects(t *testing.T) {
	cases := map[string]func(*model.EvolutionConfig){
		"unknown parent":        func(c *model.EvolutionConfig) { c.ParentSelection = "lottery" },
		"zero parent k":         func(c *model.EvolutionConfig) { c.ParentTournamentSize = 0 },
		"unknown recombination": func(c *model.EvolutionConfig) { c.Recombination = "cut" },
		"negative crossovers":   func(c *model.EvolutionConfig) { c.Crossovers = -1 },
		"uniform prob too high": func(c *model.EvolutionConfig) {
			c.Recombination = model.RecombinationUniform
			c.UniformProb = 1.2
		},
		"unknown mutation":     func(c *model.EvolutionConfig) { c.Mutation = "flip" },
		"negative creep":       func(c *model.EvolutionConfig) { c.CreepDistance = -2 },
		"mutation rate":        func(c *model.EvolutionConfig) { c.MutationRate = 1.01 },
		"unknown survivor":     func(c *model.EvolutionConfig) { c.SurvivorSelection = "lucky" },
		"zero survivor k":      func(c *model.EvolutionConfig) { c.SurvivorSelection = model.SurvivorKTournament; c.SurvivorTournamentSize = 0 },
		"unknown termination":  func(c *model.EvolutionConfig) { c.Termination = "never" },
		"zero plateau":         func(c *model.EvolutionConfig) { c.TermGensUnchanged = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := model.DefaultEvolutionConfig()
			mutate(&cfg)
			_, err := NewStrategies(cfg)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestShouldMutate(t *testing.T) {
	rng := newTestRand()

	never := Strategies{MutationRate: 0}
	always := Strategies{MutationRate: 1}
	for i := 0; i < 1000; i++ {
		assert.False(t, never.ShouldMutate(rng))
		assert.True(t, always.ShouldMutate(rng))
	}

	quarter := Strategies{MutationRate: 0.25}
	hits := 0
	for i := 0; i < 10000; i++ {
		if quarter.ShouldMutate(rng) {
			hits++
		}
	}
	assert.InDelta(t, 2500, hits, 200)
}

func TestScaledProb_FourDigitPrecision(t *testing.T) {
	rng := newTestRand()
	for i := 0; i < 1000; i++ {
		v := ScaledProb(rng, MutationDigits)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
		scaled := v * 10000
		assert.InDelta(t, float64(int(scaled+0.5)), scaled, 1e-6)
	}
}

func TestBreed_ProducesEvaluatedChild(t *testing.T) {
	p := makeTestProblem(t)
	rng := newTestRand()
	template := NewState(p)

	pop := NewPopulation()
	require.NoError(t, pop.Create(6, template))
	require.NoError(t, pop.RandomizeAll(rng))

	cfg := model.DefaultEvolutionConfig()
	cfg.MutationRate = 1
	st, err := NewStrategies(cfg)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		child, err := st.Breed(rng, pop, template)
		require.NoError(t, err)
		assert.True(t, child.Evaluated())
		assertInDomain(t, child)
		for _, m := range pop.Members() {
			assert.NotSame(t, m, child)
		}
	}
}

func TestBreed_EmptyPopulation(t *testing.T) {
	st, err := NewStrategies(model.DefaultEvolutionConfig())
	require.NoError(t, err)
	_, err = st.Breed(newTestRand(), NewPopulation(), NewState(makeTestProblem(t)))
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestTerminators(t *testing.T) {
	pop := makeScoredPopulation(t, 3, 3)

	done, err := EvalBudget{Evals: 10}.Done(pop, 9)
	require.NoError(t, err)
	assert.False(t, done)
	done, err = EvalBudget{Evals: 10}.Done(pop, 10)
	require.NoError(t, err)
	assert.True(t, done)

	best := BestPlateau{Generations: 1}
	done, err = best.Done(pop, 0)
	require.NoError(t, err)
	assert.False(t, done)
	done, err = best.Done(pop, 0)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "best_fitness", best.Name())
}
