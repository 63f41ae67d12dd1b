package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"vrt/internal/catalog"
	"vrt/internal/domain"
	"vrt/internal/suite"
)

// Formatter formats and displays catalog listings and suite summaries
type Formatter struct{}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func resultColor(r domain.Result) *color.Color {
	switch r {
	case domain.ResultPassed:
		return color.New(color.FgGreen)
	case domain.ResultTimeout:
		return color.New(color.FgYellow)
	case domain.ResultFailed, domain.ResultError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// resultLabel is the tag printed for each case. A case that has never
// been run shows a bare question mark.
func resultLabel(r domain.Result) string {
	if r == domain.ResultUnknown {
		return "?"
	}
	return strings.ToUpper(r.String())
}

// PrintSummary writes a colored per-case summary followed by the suite
// verdict. When mirror is non-nil the same lines are also written there
// without color codes.
func (f *Formatter) PrintSummary(r *suite.Report, mirror io.Writer) {
	f.line(mirror, nil, "Summary:")
	for _, e := range r.Entries {
		line := fmt.Sprintf(" * %-7s %s", resultLabel(e.Result), e.Name)
		if e.OutOfDate && e.Result != domain.ResultUnknown {
			line += " (out of date)"
		}
		f.line(mirror, resultColor(e.Result), line)
	}
	switch r.Verdict {
	case domain.SuitePassed:
		f.line(mirror, color.New(color.FgGreen, color.Bold), "Test suite PASSED")
	case domain.SuiteFailed:
		f.line(mirror, color.New(color.FgRed, color.Bold), "Test suite FAILED")
	default:
		f.line(mirror, color.New(color.FgYellow), "Test suite incomplete")
	}
}

func (f *Formatter) line(mirror io.Writer, c *color.Color, s string) {
	if c != nil {
		c.Println(s)
	} else {
		fmt.Println(s)
	}
	if mirror != nil {
		fmt.Fprintln(mirror, s)
	}
}

// PrintCatalog lists every registered test case with its last known result.
func (f *Formatter) PrintCatalog(cat *catalog.Catalog) {
	color.Green("Found %d test case(s):\n", cat.Len())

	i := 0
	for _, tc := range cat.All() {
		i++
		connector := "├── "
		if i == cat.Len() {
			connector = "└── "
		}

		if tc.Result == domain.ResultUnknown {
			color.Cyan("%s%s", connector, tc.Name())
			continue
		}
		tag := resultColor(tc.Result).Sprintf("[%s]", resultLabel(tc.Result))
		if !tc.ResultValid {
			tag += " (out of date)"
		}
		fmt.Printf("%s %s\n", color.CyanString("%s%s", connector, tc.Name()), tag)
	}
}
