package ui

import (
	"bytes"
	"strings"
	"testing"

	"vrt/internal/domain"
	"vrt/internal/suite"
)

func TestPrintSummary_MirrorOutput(t *testing.T) {
	report := &suite.Report{
		Entries: []suite.Entry{
			{Name: "work.tc_pass", Result: domain.ResultPassed},
			{Name: "work.tc_slow", Result: domain.ResultTimeout, OutOfDate: true},
			{Name: "work.tc_new", Result: domain.ResultUnknown},
		},
		Verdict: domain.SuiteIncomplete,
	}

	var mirror bytes.Buffer
	NewFormatter().PrintSummary(report, &mirror)

	lines := strings.Split(strings.TrimRight(mirror.String(), "\n"), "\n")
	want := []string{
		"Summary:",
		" * PASSED  work.tc_pass",
		" * TIMEOUT work.tc_slow (out of date)",
		" * ?       work.tc_new",
		"Test suite incomplete",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestPrintSummary_Verdicts(t *testing.T) {
	tests := []struct {
		verdict domain.SuiteResult
		want    string
	}{
		{domain.SuitePassed, "Test suite PASSED"},
		{domain.SuiteFailed, "Test suite FAILED"},
		{domain.SuiteIncomplete, "Test suite incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.verdict.String(), func(t *testing.T) {
			var mirror bytes.Buffer
			NewFormatter().PrintSummary(&suite.Report{Verdict: tt.verdict}, &mirror)
			if !strings.Contains(mirror.String(), tt.want) {
				t.Errorf("expected verdict line %q in %q", tt.want, mirror.String())
			}
		})
	}
}

func TestResultLabel_UnknownShowsQuestionMark(t *testing.T) {
	if got := resultLabel(domain.ResultUnknown); got != "?" {
		t.Errorf("expected ?, got %q", got)
	}
	if got := resultLabel(domain.ResultFailed); got != "FAILED" {
		t.Errorf("expected FAILED, got %q", got)
	}
}
