package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/domain"
	"vrt/internal/run"
	"vrt/internal/ui"
)

// TestCommand handles the test command
type TestCommand struct {
	config *config.Config
}

// NewTestCommand creates a new TestCommand
func NewTestCommand(cfg *config.Config) *TestCommand {
	return &TestCommand{config: cfg}
}

// Execute runs the command
func (tc *TestCommand) Execute(cmd *cobra.Command, args []string) error {
	gui := tc.config.Flags.Gui
	h, err := newHarness(tc.config, gui)
	if err != nil {
		return err
	}
	defer h.close()

	id := domain.NoTest
	if len(args) == 0 {
		if h.cat.Len() != 1 {
			ui.NewFormatter().PrintCatalog(h.cat)
			return nil
		}
		for only := range h.cat.All() {
			id = only
		}
	} else {
		if id, err = h.cat.FindByName(args[0]); err != nil {
			return err
		}
	}

	if _, err := h.compiler.Recompile(tc.config.Flags.Force); err != nil {
		return err
	}
	res, err := h.runner.Run(id, run.Options{Fast: !gui})
	if err != nil {
		return err
	}
	name := h.cat.Get(id).Name()
	printResult(name, res)

	if gui {
		if res, err = rerunLoop(h, os.Stdin, res); err != nil {
			return err
		}
	}
	if res != domain.ResultPassed {
		return ErrNotPassed
	}
	return nil
}

func printResult(name string, res domain.Result) {
	c := color.New(color.FgRed)
	switch res {
	case domain.ResultPassed:
		c = color.New(color.FgGreen)
	case domain.ResultTimeout:
		c = color.New(color.FgYellow)
	}
	c.Printf("Test %s: %s\n", name, strings.ToUpper(res.String()))
}

// rerunLoop keeps an interactive session alive, recompiling and rerunning
// the open test case every time the user asks for another round. It
// returns the last observed result.
func rerunLoop(h *harness, in io.Reader, last domain.Result) (domain.Result, error) {
	reader := bufio.NewReader(in)
	for {
		if _, ok := h.sess.RerunCandidate(); !ok {
			return last, nil
		}
		fmt.Println()
		color.Cyan("Edit your sources, then press Enter to recompile and rerun (q to quit)")
		line, err := reader.ReadString('\n')
		if err != nil {
			return last, nil
		}
		if strings.TrimSpace(line) == "q" {
			return last, nil
		}

		res, err := h.runner.Rerun()
		if err != nil {
			var idle *run.NoActiveRunError
			if errors.As(err, &idle) {
				return last, nil
			}
			return last, err
		}
		last = res
		if id, ok := h.sess.RerunCandidate(); ok {
			printResult(h.cat.Get(id).Name(), res)
		}
	}
}
