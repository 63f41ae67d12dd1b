package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/domain"
	"vrt/internal/ui"
)

// SuiteCommand handles the suite command
type SuiteCommand struct {
	config *config.Config
}

// NewSuiteCommand creates a new SuiteCommand
func NewSuiteCommand(cfg *config.Config) *SuiteCommand {
	return &SuiteCommand{config: cfg}
}

// Execute runs the command
func (sc *SuiteCommand) Execute(cmd *cobra.Command, args []string) error {
	h, err := newHarness(sc.config, false)
	if err != nil {
		return err
	}
	defer h.close()

	if sc.config.Flags.Force {
		if _, err := h.compiler.Recompile(true); err != nil {
			return err
		}
	}

	h.orch.SetProgress(ui.NewProgressBar())
	verdict, err := h.orch.Run()
	if err != nil {
		return err
	}

	mirror, closeMirror, err := openMirror(sc.config.Flags.Output)
	if err != nil {
		return err
	}
	ui.NewFormatter().PrintSummary(h.orch.Report(), mirror)
	if err := closeMirror(); err != nil {
		return err
	}

	if verdict != domain.SuitePassed {
		return ErrNotPassed
	}
	return nil
}

// openMirror opens the optional summary mirror file. The returned writer
// is nil when no mirror was requested.
func openMirror(path string) (io.Writer, func() error, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create summary file: %w", err)
	}
	return f, f.Close, nil
}
