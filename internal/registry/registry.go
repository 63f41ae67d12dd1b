// Package registry tracks registered source files and decides which of them
// need recompilation.
package registry

import (
	"fmt"
	"iter"
	"os"
	"time"

	"go.uber.org/zap"

	"vrt/internal/domain"
	"vrt/internal/engine"
)

// NotFoundError means a source file did not exist at registration time.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

// StaleUnit pairs a unit that must be recompiled with the modification time
// observed when staleness was decided. The scheduler stamps the unit with
// exactly this time after a successful compile.
type StaleUnit struct {
	Unit  *domain.SourceUnit
	Mtime time.Time
}

// Registry owns the ordered list of source units. Compilation order is
// registration order.
type Registry struct {
	eng    engine.Engine
	log    *zap.Logger
	units  []*domain.SourceUnit
	byPath map[string]int
}

// New returns an empty registry backed by the given engine for library
// creation.
func New(eng engine.Engine, log *zap.Logger) *Registry {
	return &Registry{
		eng:    eng,
		log:    log,
		byPath: make(map[string]int),
	}
}

// Register adds a source file, creating its library on first use. It is
// idempotent per path: re-registering updates the library and flags in place
// without duplicating the entry or resetting its compile stamp.
func (r *Registry) Register(path, library string, flags []string) error {
	if _, err := os.Stat(path); err != nil {
		return &NotFoundError{Path: path}
	}
	if err := r.eng.CreateLibrary(library); err != nil {
		return fmt.Errorf("create library %s: %w", library, err)
	}
	if i, ok := r.byPath[path]; ok {
		r.units[i].Library = library
		r.units[i].Flags = flags
		return nil
	}
	r.units = append(r.units, &domain.SourceUnit{
		Path:    path,
		Library: library,
		Flags:   flags,
	})
	r.byPath[path] = len(r.units) - 1
	r.log.Debug("source registered", zap.String("path", path), zap.String("library", library))
	return nil
}

// Len returns the number of registered units.
func (r *Registry) Len() int { return len(r.units) }

// Units iterates the source units in registration order.
func (r *Registry) Units() iter.Seq[*domain.SourceUnit] {
	return func(yield func(*domain.SourceUnit) bool) {
		for _, u := range r.units {
			if !yield(u) {
				return
			}
		}
	}
}

// Stale returns, in registration order, the units that must be recompiled.
// Staleness cascades: once one unit is out of date, every unit after it in
// registration order is treated as out of date too, since later units may
// depend on earlier ones. force marks everything stale.
func (r *Registry) Stale(force bool) ([]StaleUnit, error) {
	stale := force
	var out []StaleUnit
	for _, u := range r.units {
		info, err := os.Stat(u.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", u.Path, err)
		}
		mtime := info.ModTime()
		if mtime.After(u.Stamp) {
			stale = true
		}
		if stale {
			out = append(out, StaleUnit{Unit: u, Mtime: mtime})
		}
	}
	return out, nil
}
