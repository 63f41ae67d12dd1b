package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/domain"
	"vrt/internal/storage"
	"vrt/internal/suite"
	"vrt/internal/ui"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	config *config.Config
}

// NewSummaryCommand creates a new SummaryCommand
func NewSummaryCommand(cfg *config.Config) *SummaryCommand {
	return &SummaryCommand{config: cfg}
}

// Execute runs the command
func (sc *SummaryCommand) Execute(cmd *cobra.Command, args []string) error {
	store := storage.NewJSONStore(sc.config.ResultsPath())
	persisted, err := store.Load()
	if err != nil {
		return fmt.Errorf("no suite results to summarize: %w", err)
	}
	report := suite.FromPersisted(persisted)

	mirror, closeMirror, err := openMirror(sc.config.Flags.Output)
	if err != nil {
		return err
	}
	ui.NewFormatter().PrintSummary(report, mirror)
	if err := closeMirror(); err != nil {
		return err
	}

	if report.Verdict != domain.SuitePassed {
		return ErrNotPassed
	}
	return nil
}
