// Package storage persists suite results and the crash-recovery cleanup
// manifest.
package storage

import "vrt/internal/domain"

// Store persists suite reports for later sessions and the failures viewer.
type Store interface {
	Save(report *domain.SuiteReport) error
	Load() (*domain.SuiteReport, error)
}
