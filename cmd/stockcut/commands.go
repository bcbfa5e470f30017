package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stewythe1st/Stock-Cutting/internal/project"
)

var (
	configPath string
	logLevel   string

	sheetWidth int
	runCount   int
	evalBudget int
	staticSeed int64
	forceInit  bool

	logger = slog.Default()

	rootCmd = &cobra.Command{
		Use:   "stockcut",
		Short: "Nest irregular shapes on a fixed-width stock sheet",
		Long: `StockCut places irregular grid shapes on a stock sheet of fixed width,
minimizing the used sheet length with a (mu + lambda) evolutionary search.

Shapes are read from a text file (a "<width> <count>" line, then one move
string such as "R3 D1 L2 U1" per line), a CSV or Excel sheet with a moves
column, or a DXF drawing of closed outlines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(cmd.ErrOrStderr(), logLevel)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run [input]",
		Short: "Run the evolutionary search and write the configured outputs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch, // Defined in cmd_run.go
	}

	validateCmd = &cobra.Command{
		Use:   "validate [input]",
		Short: "Check the configuration and input without searching",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate, // Defined in cmd_validate.go
	}

	initConfigCmd = &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInitConfig, // Defined in cmd_init.go
	}
)

func init() {
	defaultLevel := os.Getenv(project.EnvPrefix + "LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", project.DefaultConfigPath,
		"YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel,
		"Log level (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{runCmd, validateCmd} {
		cmd.Flags().IntVarP(&sheetWidth, "width", "w", 0,
			"Sheet width, overriding the input file and config")
		cmd.Flags().IntVar(&runCount, "runs", 0,
			"Number of independent runs, overriding the config")
		cmd.Flags().IntVar(&evalBudget, "evals", 0,
			"Fitness evaluation budget per run, overriding the config")
		cmd.Flags().Int64Var(&staticSeed, "seed", 0,
			"Use a static seed instead of the configured seed mode")
	}
	initConfigCmd.Flags().BoolVarP(&forceInit, "force", "f", false,
		"Overwrite an existing file")

	rootCmd.AddCommand(runCmd, validateCmd, initConfigCmd)
}

// newLogger builds the text logger used by every command.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
