package model

// ParentSelection names a parent selection strategy.
type ParentSelection string

const (
	ParentFitnessProportional ParentSelection = "fitness_proportional" // Roulette wheel over shifted fitness
	ParentKTournament         ParentSelection = "k_tournament"         // Best of k uniform draws with replacement
	ParentRandom              ParentSelection = "random"               // Uniform draw
)

// Recombination names a crossover operator.
type Recombination string

const (
	RecombinationNPoint  Recombination = "n_point"
	RecombinationUniform Recombination = "uniform"
)

// Mutation names a mutation operator.
type Mutation string

const (
	MutationRandomReset Mutation = "random_reset" // Replace one gene with a fresh random placement
	MutationCreep       Mutation = "creep"        // Nudge one gene by a bounded distance
)

// SurvivorSelection names a survivor selection strategy.
type SurvivorSelection string

const (
	SurvivorTruncation  SurvivorSelection = "truncation"
	SurvivorKTournament SurvivorSelection = "k_tournament"
)

// Termination names a termination criterion.
type Termination string

const (
	TerminationNumEvals    Termination = "num_evals"    // Stop once the evaluation budget is spent
	TerminationAvgFitness  Termination = "avg_fitness"  // Stop when the average fitness plateaus
	TerminationBestFitness Termination = "best_fitness" // Stop when the best fitness plateaus
)

// SeedMode selects how the random generator is seeded.
type SeedMode string

const (
	SeedTime   SeedMode = "time"
	SeedStatic SeedMode = "static"
)

// EvolutionConfig holds every parameter of an evolutionary search.
type EvolutionConfig struct {
	Runs         int      `json:"runs" yaml:"runs" env:"RUNS" validate:"min=1"`
	FitnessEvals int      `json:"fitness_evals" yaml:"fitness_evals" env:"FITNESS_EVALS" validate:"min=1"`
	SeedMode     SeedMode `json:"seed_mode" yaml:"seed_mode" env:"SEED_MODE" validate:"oneof=time static"`
	Seed         int64    `json:"seed" yaml:"seed" env:"SEED"`

	Mu     int `json:"mu" yaml:"mu" env:"MU" validate:"min=1"`             // Population size
	Lambda int `json:"lambda" yaml:"lambda" env:"LAMBDA" validate:"min=1"` // Offspring per generation

	ParentSelection      ParentSelection `json:"parent_selection" yaml:"parent_selection" env:"PARENT_SELECTION" validate:"oneof=fitness_proportional k_tournament random"`
	ParentTournamentSize int             `json:"parent_tournament_size" yaml:"parent_tournament_size" env:"PARENT_TOURNAMENT_SIZE" validate:"min=1"`

	Recombination Recombination `json:"recombination" yaml:"recombination" env:"RECOMBINATION" validate:"oneof=n_point uniform"`
	Crossovers    int           `json:"crossovers" yaml:"crossovers" env:"CROSSOVERS" validate:"min=0"`
	UniformProb   float64       `json:"uniform_prob" yaml:"uniform_prob" env:"UNIFORM_PROB" validate:"min=0,max=1"`

	Mutation      Mutation `json:"mutation" yaml:"mutation" env:"MUTATION" validate:"oneof=random_reset creep"`
	MutationRate  float64  `json:"mutation_rate" yaml:"mutation_rate" env:"MUTATION_RATE" validate:"min=0,max=1"`
	CreepDistance int      `json:"creep_distance" yaml:"creep_distance" env:"CREEP_DISTANCE" validate:"min=0"`

	SurvivorSelection      SurvivorSelection `json:"survivor_selection" yaml:"survivor_selection" env:"SURVIVOR_SELECTION" validate:"oneof=truncation k_tournament"`
	SurvivorTournamentSize int               `json:"survivor_tournament_size" yaml:"survivor_tournament_size" env:"SURVIVOR_TOURNAMENT_SIZE" validate:"min=1"`

	Termination       Termination `json:"termination" yaml:"termination" env:"TERMINATION" validate:"oneof=num_evals avg_fitness best_fitness"`
	TermGensUnchanged int         `json:"term_gens_unchanged" yaml:"term_gens_unchanged" env:"TERM_GENS_UNCHANGED" validate:"min=1"`
	TermAvgVariance   float64     `json:"term_avg_variance" yaml:"term_avg_variance" env:"TERM_AVG_VARIANCE" validate:"min=0"`

	Output OutputConfig `json:"output" yaml:"output" envPrefix:"OUTPUT_"`
}

// OutputConfig lists the files a run writes. Empty paths are skipped.
type OutputConfig struct {
	LogFile      string `json:"log_file" yaml:"log_file" env:"LOG_FILE"`
	SolutionFile string `json:"solution_file" yaml:"solution_file" env:"SOLUTION_FILE"`
	LayoutFile   string `json:"layout_file" yaml:"layout_file" env:"LAYOUT_FILE"`
	ReportFile   string `json:"report_file" yaml:"report_file" env:"REPORT_FILE"`
	DXFFile      string `json:"dxf_file" yaml:"dxf_file" env:"DXF_FILE"`
	ChartFile    string `json:"chart_file" yaml:"chart_file" env:"CHART_FILE"`
	WorkbookFile string `json:"workbook_file" yaml:"workbook_file" env:"WORKBOOK_FILE"`
	HistoryFile  string `json:"history_file" yaml:"history_file" env:"HISTORY_FILE"`
}

// DefaultEvolutionConfig returns sensible default parameters.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		Runs:         1,
		FitnessEvals: 10000,
		SeedMode:     SeedTime,
		Seed:         0,

		Mu:     100,
		Lambda: 50,

		ParentSelection:      ParentKTournament,
		ParentTournamentSize: 4,

		Recombination: RecombinationNPoint,
		Crossovers:    1,
		UniformProb:   0.5,

		Mutation:      MutationCreep,
		MutationRate:  0.15,
		CreepDistance: 3,

		SurvivorSelection:      SurvivorTruncation,
		SurvivorTournamentSize: 4,

		Termination:       TerminationBestFitness,
		TermGensUnchanged: 50,
		TermAvgVariance:   2.0,

		Output: OutputConfig{
			LogFile:      "logs/result.log",
			SolutionFile: "solutions/solution.txt",
			LayoutFile:   "solutions/layout.txt",
		},
	}
}
