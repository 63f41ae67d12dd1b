package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vrt/internal/domain"
)

// JSONStore reads and writes the suite report as an indented JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a Store backed by the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Save writes the report, creating the parent directory if needed.
func (s *JSONStore) Save(report *domain.SuiteReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads the last saved report.
func (s *JSONStore) Load() (*domain.SuiteReport, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var report domain.SuiteReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}
