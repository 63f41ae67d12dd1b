// Package run executes single test cases, classifies their outcome, and
// manages the one interactive session the harness may have open.
package run

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/domain"
	"vrt/internal/engine"
	"vrt/internal/storage"
)

// NoActiveRunError means rerun was requested with nothing to rerun.
type NoActiveRunError struct{}

func (*NoActiveRunError) Error() string { return "no simulation to rerun" }

// Session owns the single open interactive run. At most one test case is
// open at any time; opening a new one closes the previous one first.
type Session struct {
	eng      engine.Engine
	cat      *catalog.Catalog
	manifest *storage.Manifest
	log      *zap.Logger
	libDir   string

	open    domain.TestID
	rerun   domain.TestID
	handle  engine.Session
	cleanup []string // artifacts this session created, never user files
}

// NewSession returns an idle session.
func NewSession(eng engine.Engine, cat *catalog.Catalog, manifest *storage.Manifest, libDir string, log *zap.Logger) *Session {
	return &Session{
		eng:      eng,
		cat:      cat,
		manifest: manifest,
		log:      log,
		libDir:   libDir,
		open:     domain.NoTest,
		rerun:    domain.NoTest,
	}
}

// Open returns the currently open test case, if any.
func (s *Session) Open() (domain.TestID, bool) {
	return s.open, s.open != domain.NoTest
}

// RerunCandidate returns the test case a rerun would reopen, if any.
func (s *Session) RerunCandidate() (domain.TestID, bool) {
	return s.rerun, s.rerun != domain.NoTest
}

// Handle returns the engine session of the open run, or nil when idle.
func (s *Session) Handle() engine.Session { return s.handle }

// track records artifact paths to delete when the session closes.
func (s *Session) track(paths []string) {
	s.cleanup = append(s.cleanup, paths...)
}

// attach marks a test case as the open run.
func (s *Session) attach(id domain.TestID, handle engine.Session) {
	s.open = id
	s.handle = handle
}

func (s *Session) setRerun(id domain.TestID) { s.rerun = id }

// ClearRerun forgets the rerun candidate. Fast runs call this so a suite
// pass never becomes rerunnable.
func (s *Session) ClearRerun() { s.rerun = domain.NoTest }

// Close shuts down whatever is open. For an interactive rerun candidate it
// first persists the waveform state so a later rerun can restore it. The
// engine is told to quit even when the harness has nothing open, since the
// user may have started a simulation outside our control. Safe to call when
// idle.
func (s *Session) Close() error {
	if s.open != domain.NoTest {
		if s.eng.Interactive() && s.rerun != domain.NoTest && s.handle != nil {
			tc := s.cat.Get(s.open)
			cfg := filepath.Join(s.libDir, tc.Name()+".wave.cfg")
			if err := s.handle.SaveWaveConfig(cfg); err != nil {
				s.log.Warn("save wave config", zap.String("test", tc.Name()), zap.Error(err))
			} else {
				tc.WaveConfig = cfg
			}
		}
		s.open = domain.NoTest
	}
	s.handle = nil

	if err := s.eng.Quit(); err != nil {
		return fmt.Errorf("quit simulation: %w", err)
	}

	for _, p := range s.cleanup {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove artifact", zap.String("path", p), zap.Error(err))
		}
	}
	s.cleanup = nil

	return s.manifest.Remove()
}
