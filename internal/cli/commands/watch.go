package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vrt/internal/config"
	"vrt/internal/ui"
	"vrt/internal/watch"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	config *config.Config
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(cfg *config.Config) *WatchCommand {
	return &WatchCommand{config: cfg}
}

// Execute runs the command
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	h, err := newHarness(wc.config, false)
	if err != nil {
		return err
	}
	defer h.close()

	h.orch.SetProgress(ui.NewProgressBar())
	formatter := ui.NewFormatter()

	runSuite := func() {
		if _, err := h.orch.Run(); err != nil {
			h.log.Error("suite run failed", zap.Error(err))
			return
		}
		formatter.PrintSummary(h.orch.Report(), nil)
	}
	runSuite()

	w, err := watch.New(h.reg, h.log, runSuite)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	color.Cyan("Watching registered sources; press Ctrl+C to stop")
	<-ctx.Done()
	w.Stop()
	return nil
}
