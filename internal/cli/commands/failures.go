package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/storage"
	"vrt/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	config *config.Config
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(cfg *config.Config) *FailuresCommand {
	return &FailuresCommand{config: cfg}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	store := storage.NewJSONStore(fc.config.ResultsPath())
	report, err := store.Load()
	if err != nil {
		return fmt.Errorf("no suite results to view: %w", err)
	}
	return ui.NewFailureViewer(store).View(report)
}
