package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stewythe1st/Stock-Cutting/internal/engine"
)

// runValidate loads everything a run needs and builds the evolver, but does
// not search.
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, problem, err := setup(cmd, args)
	if err != nil {
		return err
	}
	if _, err := engine.NewEvolver(&problem, cfg.Evolution, logger); err != nil {
		return err
	}

	ev := cfg.Evolution
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d shapes, %d cells, sheet width %d, max length %d\n",
		problem.Name, len(problem.Shapes), problem.TotalArea(), problem.SheetWidth, problem.MaxLength())
	fmt.Fprintf(w, "search: mu %d, lambda %d, %d run(s), %d evals, %s termination\n",
		ev.Mu, ev.Lambda, ev.Runs, ev.FitnessEvals, ev.Termination)
	return nil
}
