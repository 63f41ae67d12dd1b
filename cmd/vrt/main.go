package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vrt/internal/cli"
	"vrt/internal/cli/commands"
	"vrt/internal/config"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "vrt",
		Short:         "VHDL regression-test harness",
		Long:          `A regression-test harness for VHDL designs. Tracks which source files need recompiling, runs test benches through a ModelSim-compatible simulator, classifies their outcomes and keeps a suite-wide verdict.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create config from defaults, .env and the environment
	cfg := config.Load()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrNotPassed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
