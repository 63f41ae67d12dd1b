package run

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/compile"
	"vrt/internal/domain"
	"vrt/internal/engine"
	"vrt/internal/storage"
)

// Options configures a single run of one test case.
type Options struct {
	TimeLimit string // override the case's own virtual-time budget
	RunTo     string // run to an absolute virtual time instead (reruns)
	Fast      bool   // batch-style: close immediately, no rerun candidate
}

// Classifier runs one test case at a time and derives its result from the
// engine's status probes. Compilation is assumed up to date; the caller
// runs the scheduler first.
type Classifier struct {
	cat      *catalog.Catalog
	eng      engine.Engine
	sess     *Session
	compiler *compile.Scheduler
	manifest *storage.Manifest
	log      *zap.Logger
}

// NewClassifier wires a classifier over the shared session.
func NewClassifier(cat *catalog.Catalog, eng engine.Engine, sess *Session, compiler *compile.Scheduler, manifest *storage.Manifest, log *zap.Logger) *Classifier {
	return &Classifier{
		cat:      cat,
		eng:      eng,
		sess:     sess,
		compiler: compiler,
		manifest: manifest,
		log:      log,
	}
}

// classify derives the tri-state outcome from the two status probes. The
// engine has no direct halt-reason query, so: if the extra minimal step
// reached the natural end state the design halted by event exhaustion
// within its budget; if the end state was already reached before the step,
// the budget ran out first; otherwise an explicit failure stopped the run.
func classify(endAfterRun, endAfterStep bool) domain.Result {
	switch {
	case endAfterStep:
		return domain.ResultPassed
	case endAfterRun:
		return domain.ResultTimeout
	default:
		return domain.ResultFailed
	}
}

// Run executes one test case and records its result in the catalog. Any
// open session is closed first. A failure signal raised by the design is
// absorbed into the classification, never surfaced as an error; an engine
// that cannot start or crashes mid-run yields ResultError.
func (c *Classifier) Run(id domain.TestID, opts Options) (domain.Result, error) {
	tc := c.cat.Get(id)
	if tc == nil {
		return domain.ResultUnknown, &catalog.NotFoundError{Pattern: fmt.Sprintf("#%d", id)}
	}
	if err := c.sess.Close(); err != nil {
		return domain.ResultUnknown, err
	}

	c.log.Info("running test",
		zap.String("test", tc.Name()),
		zap.Bool("fast", opts.Fast),
	)

	// The run may litter its working directory. Note everything we might
	// create so an abrupt termination can be cleaned up on next startup.
	// An ini file the user already has is theirs to keep.
	cleanup := []string{filepath.Join(tc.WorkDir, "vsim.wlf")}
	ini := filepath.Join(tc.WorkDir, "modelsim.ini")
	if _, err := os.Stat(ini); os.IsNotExist(err) {
		cleanup = append(cleanup, ini)
	}
	if err := c.manifest.Write(cleanup); err != nil {
		return domain.ResultUnknown, err
	}
	c.sess.track(cleanup)

	handle, err := c.eng.Start(tc.Library, tc.Entity, engine.StartOptions{
		Dir:              tc.WorkDir,
		Flags:            tc.Flags,
		SuppressWarnings: tc.SuppressWarnings,
		LogAll:           tc.LogAll,
		WaveConfig:       tc.WaveConfig,
		Fast:             opts.Fast,
	})
	if err != nil {
		tc.Result = domain.ResultError
		tc.ResultValid = true
		if closeErr := c.sess.Close(); closeErr != nil {
			c.log.Warn("close after start failure", zap.Error(closeErr))
		}
		return domain.ResultError, fmt.Errorf("start %s: %w", tc.Name(), err)
	}
	c.sess.attach(id, handle)

	limit := tc.TimeLimit
	if opts.TimeLimit != "" {
		limit = opts.TimeLimit
	}
	if opts.RunTo != "" {
		limit = opts.RunTo
	}
	if err := handle.Run(limit); err != nil {
		tc.Result = domain.ResultError
		tc.ResultValid = true
		tc.LastOutput = handle.Output()
		return domain.ResultError, fmt.Errorf("run %s: %w", tc.Name(), err)
	}

	// Two probes: status after the timed run, then a single minimal
	// advance and a second status. A failure break during the step is
	// part of the protocol and only logged.
	endAfterRun, err := handle.AtEnd()
	if err != nil {
		c.log.Warn("first status probe", zap.Error(err))
	}
	if err := handle.Step(); err != nil {
		c.log.Debug("minimal step interrupted", zap.Error(err))
	}
	endAfterStep, err := handle.AtEnd()
	if err != nil {
		c.log.Warn("second status probe", zap.Error(err))
	}

	result := classify(endAfterRun, endAfterStep)
	tc.Result = result
	tc.ResultValid = true
	tc.LastOutput = handle.Output()
	c.log.Info("test finished", zap.String("test", tc.Name()), zap.Stringer("result", result))

	if opts.Fast {
		c.sess.ClearRerun()
		if err := c.sess.Close(); err != nil {
			return result, err
		}
		return result, nil
	}

	c.sess.setRerun(id)
	if c.eng.Interactive() && tc.WaveConfig != "" {
		// Apply the wave script again after the run so viewer position
		// and zoom reflect what it sets.
		if _, err := os.Stat(tc.WaveConfig); err == nil {
			if err := handle.LoadWaveConfig(tc.WaveConfig); err != nil {
				c.log.Warn("restore wave config", zap.Error(err))
			}
		}
	}
	return result, nil
}

// Rerun reopens the rerun candidate, recompiling first. When a session is
// still open the rerun extends to its current virtual time, in case the
// user advanced past the configured budget.
func (c *Classifier) Rerun() (domain.Result, error) {
	id, ok := c.sess.RerunCandidate()
	if !ok {
		return domain.ResultUnknown, &NoActiveRunError{}
	}

	var runTo string
	if _, open := c.sess.Open(); open && c.sess.Handle() != nil {
		now, err := c.sess.Handle().Now()
		if err != nil {
			c.log.Warn("query simulation time", zap.Error(err))
		} else {
			runTo = now
		}
	}

	if _, err := c.compiler.Recompile(false); err != nil {
		return domain.ResultUnknown, err
	}
	return c.Run(id, Options{RunTo: runTo})
}
