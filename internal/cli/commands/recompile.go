package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vrt/internal/config"
)

// RecompileCommand handles the recompile command
type RecompileCommand struct {
	config *config.Config
}

// NewRecompileCommand creates a new RecompileCommand
func NewRecompileCommand(cfg *config.Config) *RecompileCommand {
	return &RecompileCommand{config: cfg}
}

// Execute runs the command
func (rc *RecompileCommand) Execute(cmd *cobra.Command, args []string) error {
	h, err := newHarness(rc.config, false)
	if err != nil {
		return err
	}
	defer h.close()

	recompiled, err := h.compiler.Recompile(rc.config.Flags.Force)
	if err != nil {
		return err
	}
	if recompiled {
		color.Green("Libraries recompiled")
	} else {
		color.Cyan("Libraries are up to date")
	}
	return nil
}
