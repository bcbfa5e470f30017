package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stewythe1st/Stock-Cutting/internal/engine"
	"github.com/stewythe1st/Stock-Cutting/internal/export"
	"github.com/stewythe1st/Stock-Cutting/internal/importer"
	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/stewythe1st/Stock-Cutting/internal/project"
)

var errNoInput = errors.New("no input file: pass one as an argument or set input.path")

// setup loads the configuration, applies command line overrides and imports
// the problem.
func setup(cmd *cobra.Command, args []string) (project.Config, model.Problem, error) {
	cfg, err := project.LoadConfig(configPath)
	if err != nil {
		return cfg, model.Problem{}, err
	}
	applyOverrides(cmd, &cfg, args)
	if err := cfg.Validate(); err != nil {
		return cfg, model.Problem{}, err
	}

	problem, err := loadProblem(cfg.Input)
	if err != nil {
		return cfg, model.Problem{}, err
	}
	return cfg, problem, nil
}

func applyOverrides(cmd *cobra.Command, cfg *project.Config, args []string) {
	if len(args) > 0 {
		cfg.Input.Path = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Input.SheetWidth = sheetWidth
	}
	if flags.Changed("runs") {
		cfg.Evolution.Runs = runCount
	}
	if flags.Changed("evals") {
		cfg.Evolution.FitnessEvals = evalBudget
	}
	if flags.Changed("seed") {
		cfg.Evolution.SeedMode = model.SeedStatic
		cfg.Evolution.Seed = staticSeed
	}
}

// loadProblem imports the shapes and builds the problem. Import warnings are
// logged; any row error fails the import.
func loadProblem(in project.InputConfig) (model.Problem, error) {
	if in.Path == "" {
		return model.Problem{}, errNoInput
	}

	res := importer.ImportFile(in.Path, in.CellSize)
	for _, w := range res.Warnings {
		logger.Warn("import warning", "file", in.Path, "message", w)
	}
	for _, e := range res.Errors {
		logger.Error("import error", "file", in.Path, "message", e)
	}

	name := in.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in.Path), filepath.Ext(in.Path))
	}
	problem, err := res.Problem(name, in.SheetWidth)
	if err != nil {
		return model.Problem{}, fmt.Errorf("failed to load %s: %w", in.Path, err)
	}
	problem.OverlapPenalty = in.OverlapPenalty
	return problem, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, problem, err := setup(cmd, args)
	if err != nil {
		return err
	}

	evolver, err := engine.NewEvolver(&problem, cfg.Evolution, logger)
	if err != nil {
		return err
	}

	var genLog *export.GenerationLog
	if path := cfg.Evolution.Output.LogFile; path != "" {
		genLog, err = export.CreateGenerationLog(path)
		if err != nil {
			return err
		}
		defer genLog.Close()
		evolver.OnGeneration = genLog.Observe
	}

	logger.Info("search started",
		"input", cfg.Input.Path,
		"shapes", len(problem.Shapes),
		"sheet_width", problem.SheetWidth,
		"seed", evolver.Seed())

	result, err := evolver.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if genLog != nil {
		if err := genLog.Close(); err != nil {
			return err
		}
	}

	if err := writeOutputs(result, cfg); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result)
	return nil
}

type output struct {
	name  string
	path  string
	write func(path string, r model.Result) error
}

// writeOutputs writes every output file that has a path configured.
func writeOutputs(r model.Result, cfg project.Config) error {
	out := cfg.Evolution.Output
	outputs := []output{
		{"solution", out.SolutionFile, export.WriteSolutionFile},
		{"layout", out.LayoutFile, export.WriteLayoutFile},
		{"report", out.ReportFile, export.ExportReport},
		{"dxf", out.DXFFile, func(path string, r model.Result) error {
			return export.ExportDXF(path, r, cfg.Input.CellSize)
		}},
		{"chart", out.ChartFile, export.ExportChart},
		{"workbook", out.WorkbookFile, export.ExportWorkbook},
		{"history", out.HistoryFile, project.AppendHistory},
	}

	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(o.path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", o.name, err)
		}
		if err := o.write(o.path, r); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.name, err)
		}
		logger.Info("output written", "kind", o.name, "path", o.path)
	}
	return nil
}

func printSummary(w io.Writer, r model.Result) {
	fmt.Fprintf(w, "Best of %d run(s): fitness %d, length %d, overlap %d, efficiency %.1f%%\n",
		len(r.Runs), r.Best.Fitness, r.Best.Length, r.Best.Overlap, r.Efficiency())
	for _, row := range export.RenderLayout(&r.Problem, r.Best.Layout) {
		fmt.Fprintln(w, row)
	}
}
