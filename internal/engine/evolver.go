package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// Reasons a run stops.
const (
	StopBudget    = "budget"
	StopCancelled = "cancelled"
)

// Evolver runs a (mu + lambda) evolutionary search over layouts.
type Evolver struct {
	problem    *model.Problem
	config     model.EvolutionConfig
	strategies Strategies
	rng        *rand.Rand
	seed       int64
	logger     *slog.Logger

	// OnGeneration, when set, is called after every generation.
	OnGeneration func(model.GenerationStats)
}

// NewEvolver checks the problem and configuration and seeds the generator.
func NewEvolver(problem *model.Problem, config model.EvolutionConfig, logger *slog.Logger) (*Evolver, error) {
	if err := problem.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}
	strategies, err := NewStrategies(config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.Recombination == model.RecombinationNPoint && config.Crossovers > len(problem.Shapes)-1 {
		return nil, fmt.Errorf("%w: %d crossover points for %d shapes", ErrInvalidArgument, config.Crossovers, len(problem.Shapes))
	}
	if config.Mu < 1 || config.Lambda < 1 || config.Runs < 1 || config.FitnessEvals < 1 {
		return nil, fmt.Errorf("%w: mu, lambda, runs and fitness evals must be positive", ErrInvalidArgument)
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng, seed := NewRand(config.SeedMode, config.Seed)
	return &Evolver{
		problem:    problem,
		config:     config,
		strategies: strategies,
		rng:        rng,
		seed:       seed,
		logger:     logger,
	}, nil
}

// Seed returns the seed the generator was started with.
func (e *Evolver) Seed() int64 { return e.seed }

// Run executes every configured run and returns the combined result. The best
// solution over all runs is kept.
func (e *Evolver) Run(ctx context.Context) (model.Result, error) {
	result := model.Result{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Seed:      e.seed,
		Problem:   *e.problem,
		Config:    e.config,
	}
	template := NewState(e.problem)

	var overall *State
	for run := 1; run <= e.config.Runs; run++ {
		e.logger.Info("run started", "run", run, "mu", e.config.Mu, "lambda", e.config.Lambda)

		best, summary, stats, err := e.runOnce(ctx, run, template)
		result.Generations = append(result.Generations, stats...)
		if err != nil {
			return result, fmt.Errorf("run %d: %w", run, err)
		}
		result.Runs = append(result.Runs, summary)

		e.logger.Info("run finished",
			"run", run,
			"generations", summary.Generations,
			"evals", summary.Evals,
			"stopped", summary.Terminated,
			"best_fitness", summary.Best.Fitness,
			"length", summary.Best.Length,
			"overlap", summary.Best.Overlap)

		if overall == nil || best.Fitness() > overall.Fitness() {
			overall = best
		}
	}

	result.Best = overall.Solution()
	result.FinishedAt = time.Now().UTC()
	return result, nil
}

// runOnce seeds a population and evolves it until a stop condition holds.
// The returned best state is a copy owned by the caller.
func (e *Evolver) runOnce(ctx context.Context, run int, template *State) (*State, model.RunSummary, []model.GenerationStats, error) {
	summary := model.RunSummary{Run: run}
	var stats []model.GenerationStats

	population := NewPopulation()
	offspring := NewPopulation()
	defer population.Release()
	defer offspring.Release()

	if err := population.Create(e.config.Mu, template); err != nil {
		return nil, summary, stats, err
	}
	if err := population.RandomizeAll(e.rng); err != nil {
		return nil, summary, stats, err
	}
	evals := population.Size()

	var best *State
	for gen := 1; ; gen++ {
		if err := ctx.Err(); err != nil {
			summary.Terminated = StopCancelled
			return best, summary, stats, err
		}

		for i := 0; i < e.config.Lambda; i++ {
			child, err := e.strategies.Breed(e.rng, population, template)
			if err != nil {
				return best, summary, stats, err
			}
			if err := offspring.Add(child); err != nil {
				return best, summary, stats, err
			}
			evals++
		}

		if err := population.Absorb(offspring); err != nil {
			return best, summary, stats, err
		}
		if err := e.strategies.Survivor.Reduce(e.rng, population, e.config.Mu); err != nil {
			return best, summary, stats, fmt.Errorf("failed to reduce population: %w", err)
		}

		done, err := e.strategies.Terminate.Done(population, evals)
		if err != nil {
			return best, summary, stats, fmt.Errorf("failed termination test: %w", err)
		}

		gs, local, err := e.generationStats(population, run, gen, evals)
		if err != nil {
			return best, summary, stats, err
		}
		stats = append(stats, gs)
		e.logger.Debug("generation",
			"run", run,
			"generation", gen,
			"evals", evals,
			"avg_fitness", gs.AverageFitness,
			"best_fitness", gs.BestFitness)
		if e.OnGeneration != nil {
			e.OnGeneration(gs)
		}

		if best == nil || local.Fitness() > best.Fitness() {
			best = local.Clone()
		}

		summary.Generations = gen
		summary.Evals = evals
		summary.Best = best.Solution()

		if done {
			summary.Terminated = e.strategies.Terminate.Name()
			break
		}
		if evals >= e.config.FitnessEvals {
			summary.Terminated = StopBudget
			break
		}
	}
	return best, summary, stats, nil
}

func (e *Evolver) generationStats(pop *Population, run, gen, evals int) (model.GenerationStats, *State, error) {
	avg, err := pop.AverageFitness()
	if err != nil {
		return model.GenerationStats{}, nil, err
	}
	sd, err := pop.FitnessStdDev()
	if err != nil {
		return model.GenerationStats{}, nil, err
	}
	local, err := pop.Fittest()
	if err != nil {
		return model.GenerationStats{}, nil, err
	}
	return model.GenerationStats{
		Run:            run,
		Generation:     gen,
		Evals:          evals,
		AverageFitness: avg,
		BestFitness:    local.Fitness(),
		StdDev:         sd,
		ParetoSize:     len(pop.ParetoFront()),
	}, local, nil
}
