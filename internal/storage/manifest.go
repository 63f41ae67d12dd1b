package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the sidecar file listing paths a run may leave behind.
// It is written before each run and deleted on proper session close; if the
// process dies mid-run, the next startup consumes it.
const ManifestName = ".cleanup"

// Manifest tracks artifact paths that must be deleted if the harness
// terminates before the session closes properly.
type Manifest struct {
	dir string // directory the manifest file lives in (the library dir)
}

// NewManifest returns a manifest rooted in the given directory.
func NewManifest(dir string) *Manifest {
	return &Manifest{dir: dir}
}

func (m *Manifest) path() string {
	return filepath.Join(m.dir, ManifestName)
}

// Write persists the list of paths to delete on abnormal termination.
func (m *Manifest) Write(paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(m.path(), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write cleanup manifest: %w", err)
	}
	return nil
}

// Remove deletes the manifest after a proper cleanup handled the paths.
func (m *Manifest) Remove() error {
	err := os.Remove(m.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cleanup manifest: %w", err)
	}
	return nil
}

// Recover deletes every path listed in a leftover manifest and then the
// manifest itself. It reports the paths it removed. A missing manifest
// means the previous session closed properly.
func (m *Manifest) Recover() ([]string, error) {
	data, err := os.ReadFile(m.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cleanup manifest: %w", err)
	}

	var removed []string
	for _, line := range strings.Split(string(data), "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		if err := os.Remove(p); err == nil {
			removed = append(removed, p)
		}
	}
	return removed, m.Remove()
}
