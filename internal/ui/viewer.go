package ui

import "vrt/internal/domain"

// Viewer displays persisted suite results in an interactive TUI
type Viewer interface {
	View(report *domain.SuiteReport) error
}
