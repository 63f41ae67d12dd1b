package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"vrt/internal/cli"
	"vrt/internal/config"
)

// ErrNotPassed signals a non-passing verdict to the caller. The summary
// has already been printed when it is returned.
var ErrNotPassed = errors.New("not all tests passed")

// Commands holds all CLI commands
type Commands struct {
	Recompile *RecompileCommand
	Test      *TestCommand
	Suite     *SuiteCommand
	Summary   *SummaryCommand
	Debug     *DebugCommand
	Failures  *FailuresCommand
	Watch     *WatchCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{
		Recompile: NewRecompileCommand(cfg),
		Test:      NewTestCommand(cfg),
		Suite:     NewSuiteCommand(cfg),
		Summary:   NewSummaryCommand(cfg),
		Debug:     NewDebugCommand(cfg),
		Failures:  NewFailuresCommand(cfg),
		Watch:     NewWatchCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Apply(flags.ToConfigFlags())
		return nil
	}
	addCommonFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&flags.Manifest, "manifest", "m", "", "Project manifest to load (default vrt.yaml)")
		cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Verbose harness logging")
	}

	recompileCmd := &cobra.Command{
		Use:     "recompile",
		Short:   "Bring all compiled libraries up to date",
		Long:    "Recompile every registered source file whose compiled form is out of date, in registration order",
		RunE:    c.Recompile.Execute,
		PreRunE: applyFlags,
	}
	recompileCmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "Recompile everything regardless of timestamps")
	addCommonFlags(recompileCmd)
	rootCmd.AddCommand(recompileCmd)

	testCmd := &cobra.Command{
		Use:     "test [pattern]",
		Short:   "Run a single test case",
		Long:    "Recompile and run the test case matching the pattern. Without a pattern the catalog is listed, or the sole test case is run",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Test.Execute,
		PreRunE: applyFlags,
	}
	testCmd.Flags().BoolVarP(&flags.Gui, "gui", "g", false, "Drive the simulator with a user-facing waveform session")
	testCmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "Recompile everything regardless of timestamps")
	addCommonFlags(testCmd)
	rootCmd.AddCommand(testCmd)

	suiteCmd := &cobra.Command{
		Use:     "suite",
		Short:   "Run every test case that needs running",
		Long:    "Recompile, run every test case with no fresh result, and print the summary with the suite verdict",
		RunE:    c.Suite.Execute,
		PreRunE: applyFlags,
	}
	suiteCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Also write the summary to this file")
	suiteCmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "Recompile everything regardless of timestamps")
	addCommonFlags(suiteCmd)
	rootCmd.AddCommand(suiteCmd)

	summaryCmd := &cobra.Command{
		Use:     "summary",
		Short:   "Print the summary without running anything",
		Long:    "Print the per-case summary and suite verdict from the last known results, without compiling or simulating",
		RunE:    c.Summary.Execute,
		PreRunE: applyFlags,
	}
	summaryCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Also write the summary to this file")
	addCommonFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)

	debugCmd := &cobra.Command{
		Use:     "debug",
		Short:   "Debug the first failing test case interactively",
		Long:    "Repeatedly surface the first failing test case in an interactive simulator session until the suite passes",
		RunE:    c.Debug.Execute,
		PreRunE: applyFlags,
	}
	addCommonFlags(debugCmd)
	rootCmd.AddCommand(debugCmd)

	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View recorded test failures interactively",
		Long:    "Display the non-passing cases from the last persisted suite report in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: applyFlags,
	}
	addCommonFlags(failuresCmd)
	rootCmd.AddCommand(failuresCmd)

	watchCmd := &cobra.Command{
		Use:     "watch",
		Short:   "Rerun the suite whenever a source file changes",
		Long:    "Run the suite, then keep watching every registered source file and rerun the suite when changes settle",
		RunE:    c.Watch.Execute,
		PreRunE: applyFlags,
	}
	addCommonFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
