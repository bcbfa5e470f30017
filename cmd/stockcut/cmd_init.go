package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stewythe1st/Stock-Cutting/internal/project"
)

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := project.DefaultConfigPath
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := project.SaveConfig(path, project.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}
