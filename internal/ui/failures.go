package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vrt/internal/domain"
	"vrt/internal/storage"
)

// FailureViewer displays non-passing test cases from the results file
// in an interactive TUI
type FailureViewer struct {
	store storage.Store
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(store storage.Store) *FailureViewer {
	return &FailureViewer{store: store}
}

// View displays the non-passing cases of a persisted report in an
// interactive TUI. Resolved marks are written back through the store.
func (fv *FailureViewer) View(report *domain.SuiteReport) error {
	var failures []*domain.SuiteReportEntry
	for i := range report.Entries {
		e := &report.Entries[i]
		switch e.Result {
		case domain.ResultPassed.String(), domain.ResultUnknown.String():
		default:
			failures = append(failures, e)
		}
	}
	if len(failures) == 0 {
		color.Green("✓ No test failures recorded")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(index int) string {
		entry := failures[index]
		if entry.Resolved {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, entry.Test)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, entry.Test)
	}

	for i := range failures {
		list.AddItem(getListItemText(i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnresolved := func() int {
		count := 0
		for _, e := range failures {
			if !e.Resolved {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → view transcript, ← back, Ctrl+C exit ",
			len(failures), countUnresolved()))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		entry := failures[index]
		statsView.SetText(formatFailureStats(entry))
		detailsView.SetText(formatFailureDetails(entry))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					failures[index].Resolved = !failures[index].Resolved
					list.SetItemText(index, getListItemText(index), "")
					updateHeader()
					if err := fv.store.Save(report); err != nil {
						_ = err
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// formatFailureDetails formats a failure transcript for display using
// tview color tags ([red], [yellow], etc.)
func formatFailureDetails(entry *domain.SuiteReportEntry) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Test: %s[white]\n\n", entry.Test)
	if entry.Diagnostic == "" {
		builder.WriteString("[gray]No transcript captured for this case.[white]\n")
		return builder.String()
	}

	fmt.Fprintf(&builder, "[yellow]Transcript:[white]\n")
	lines := strings.Split(strings.TrimRight(entry.Diagnostic, "\n"), "\n")
	const maxLines = 200
	for i, line := range lines {
		if i >= maxLines {
			fmt.Fprintf(&builder, "  [gray]... and %d more lines[white]\n", len(lines)-maxLines)
			break
		}
		fmt.Fprintf(&builder, "  %s\n", tview.Escape(line))
	}

	return builder.String()
}

// formatFailureStats formats the header line for a test failure
func formatFailureStats(entry *domain.SuiteReportEntry) string {
	stale := ""
	if entry.OutOfDate {
		stale = " [gray](out of date)[white]"
	}
	return fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]  [cyan]result:[white] [red]%s[white]%s\n",
		entry.Test, strings.ToUpper(entry.Result), stale)
}
