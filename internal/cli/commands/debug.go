package commands

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/domain"
	"vrt/internal/run"
	"vrt/internal/ui"
)

// DebugCommand handles the debug command
type DebugCommand struct {
	config *config.Config
}

// NewDebugCommand creates a new DebugCommand
func NewDebugCommand(cfg *config.Config) *DebugCommand {
	return &DebugCommand{config: cfg}
}

// Execute runs the command
func (dc *DebugCommand) Execute(cmd *cobra.Command, args []string) error {
	h, err := newHarness(dc.config, true)
	if err != nil {
		return err
	}
	defer h.close()

	formatter := ui.NewFormatter()
	reader := bufio.NewReader(os.Stdin)
	for {
		verdict, err := h.orch.Debug()
		if err != nil {
			return err
		}
		formatter.PrintSummary(h.orch.Report(), nil)
		if verdict == domain.SuitePassed {
			return nil
		}
		if verdict != domain.SuiteFailed {
			return ErrNotPassed
		}

		if id, open := h.sess.Open(); open {
			color.Red("Test %s still fails; the simulator session is open for inspection", h.cat.Get(id).Name())
		}
		color.Cyan("Edit your sources, then press Enter to recompile and rerun (q to quit)")
		line, rerr := reader.ReadString('\n')
		if rerr != nil || strings.TrimSpace(line) == "q" {
			return ErrNotPassed
		}
		if _, err := h.runner.Rerun(); err != nil {
			var idle *run.NoActiveRunError
			if errors.As(err, &idle) {
				continue
			}
			return err
		}
	}
}
