package model

import "time"

// GenerationStats is one line of the per-generation log.
type GenerationStats struct {
	Run            int     `json:"run"`
	Generation     int     `json:"generation"`
	Evals          int     `json:"evals"`
	AverageFitness float64 `json:"average_fitness"`
	BestFitness    int     `json:"best_fitness"`
	StdDev         float64 `json:"std_dev"`
	ParetoSize     int     `json:"pareto_size"`
}

// Solution is a scored layout, detached from the search that produced it.
type Solution struct {
	Layout  Layout `json:"layout"`
	Fitness int    `json:"fitness"`
	Length  int    `json:"length"`  // used sheet length
	Overlap int    `json:"overlap"` // overlapping cells; 0 for a feasible nesting
}

// Feasible reports whether no two shapes overlap.
func (s Solution) Feasible() bool {
	return s.Overlap == 0
}

// RunSummary describes one independent run.
type RunSummary struct {
	Run         int      `json:"run"`
	Generations int      `json:"generations"`
	Evals       int      `json:"evals"`
	Terminated  string   `json:"terminated"` // why the run stopped
	Best        Solution `json:"best"`
}

// Result holds the outcome of all runs of one invocation.
type Result struct {
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Seed        int64             `json:"seed"`
	Problem     Problem           `json:"problem"`
	Config      EvolutionConfig   `json:"config"`
	Runs        []RunSummary      `json:"runs"`
	Generations []GenerationStats `json:"generations"`
	Best        Solution          `json:"best"` // best over all runs
}

// Efficiency returns the share of the used sheet area covered by shapes, in percent.
func (r Result) Efficiency() float64 {
	used := r.Best.Length * r.Problem.SheetWidth
	if used == 0 {
		return 0
	}
	return float64(r.Problem.TotalArea()) / float64(used) * 100.0
}
