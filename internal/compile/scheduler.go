// Package compile decides what to recompile and drives the engine's
// compiler over the stale units.
package compile

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/engine"
	"vrt/internal/registry"
)

// Closer shuts the active simulation down. Compiling into a library that a
// live simulation has loaded is not safe, so the scheduler closes first.
type Closer interface {
	Close() error
}

// Scheduler recompiles stale source units in registration order and keeps
// the catalog's result freshness in sync.
type Scheduler struct {
	reg    *registry.Registry
	cat    *catalog.Catalog
	eng    engine.Engine
	log    *zap.Logger
	closer Closer
}

// New returns a scheduler over the given registry and catalog.
func New(reg *registry.Registry, cat *catalog.Catalog, eng engine.Engine, log *zap.Logger) *Scheduler {
	return &Scheduler{reg: reg, cat: cat, eng: eng, log: log}
}

// SetCloser wires the session that must be closed before recompiling.
func (s *Scheduler) SetCloser(c Closer) {
	s.closer = c
}

// Recompile compiles every stale unit, cascading from the first one found.
// It reports whether anything was recompiled; if so, every test result in
// the catalog is marked out of date, even when a later unit fails to
// compile. A compile failure aborts the remaining sequence and surfaces as
// a *engine.CompileError.
func (s *Scheduler) Recompile(force bool) (bool, error) {
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return false, err
		}
	}
	stale, err := s.reg.Stale(force)
	if err != nil {
		return false, err
	}

	recompiled := false
	for _, su := range stale {
		u := su.Unit
		s.log.Info("compiling",
			zap.String("file", filepath.Base(u.Path)),
			zap.String("library", u.Library),
		)
		if err := s.eng.Compile(u.Path, u.Library, u.Flags); err != nil {
			if recompiled {
				s.cat.InvalidateAll()
			}
			return recompiled, fmt.Errorf("recompile aborted: %w", err)
		}
		u.Stamp = su.Mtime
		recompiled = true
	}

	if recompiled {
		s.cat.InvalidateAll()
	}
	return recompiled, nil
}
