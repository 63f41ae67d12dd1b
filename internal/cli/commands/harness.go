package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vrt/internal/catalog"
	"vrt/internal/compile"
	"vrt/internal/config"
	"vrt/internal/engine"
	"vrt/internal/project"
	"vrt/internal/registry"
	"vrt/internal/run"
	"vrt/internal/storage"
	"vrt/internal/suite"
)

// harness wires the full pipeline for one command invocation: engine,
// source registry, test catalog, compile scheduler, session, classifier
// and orchestrator, populated from the project manifest.
type harness struct {
	cfg      *config.Config
	log      *zap.Logger
	eng      *engine.Vsim
	reg      *registry.Registry
	cat      *catalog.Catalog
	compiler *compile.Scheduler
	sess     *run.Session
	runner   *run.Classifier
	store    storage.Store
	orch     *suite.Orchestrator
}

func newLogger(debug bool) *zap.Logger {
	c := zap.NewDevelopmentConfig()
	c.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		c.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := c.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newHarness builds the pipeline. Sidecar files left behind by a crashed
// earlier run are removed before the engine starts.
func newHarness(cfg *config.Config, gui bool) (*harness, error) {
	log := newLogger(cfg.Flags.Debug)

	libDir := cfg.LibraryPath()
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	cleanup := storage.NewManifest(libDir)
	if leftover, err := cleanup.Recover(); err == nil && len(leftover) > 0 {
		for _, p := range leftover {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				log.Warn("crash recovery: cannot remove sidecar",
					zap.String("path", p), zap.Error(err))
			}
		}
		_ = cleanup.Remove()
		log.Info("removed sidecar files left by an earlier run",
			zap.Int("count", len(leftover)))
	}

	eng := engine.NewVsim(cfg.Simulator, libDir, gui, log)
	reg := registry.New(eng, log)
	cat := catalog.New()

	man, err := project.Load(cfg.Manifest)
	if err != nil {
		return nil, err
	}
	def := project.Defaults{
		TimeLimit:        cfg.DefaultTimeLimit,
		SuppressWarnings: cfg.SuppressWarnings,
		LogAll:           cfg.LogAll,
	}
	if err := man.Apply(reg, cat, def); err != nil {
		return nil, err
	}

	compiler := compile.New(reg, cat, eng, log)
	sess := run.NewSession(eng, cat, cleanup, libDir, log)
	compiler.SetCloser(sess)
	runner := run.NewClassifier(cat, eng, sess, compiler, cleanup, log)
	store := storage.NewJSONStore(cfg.ResultsPath())
	orch := suite.New(cat, compiler, runner, store, log)

	return &harness{
		cfg:      cfg,
		log:      log,
		eng:      eng,
		reg:      reg,
		cat:      cat,
		compiler: compiler,
		sess:     sess,
		runner:   runner,
		store:    store,
		orch:     orch,
	}, nil
}

// close ends any open simulation and shuts the simulator down.
func (h *harness) close() {
	if err := h.sess.Close(); err != nil {
		h.log.Warn("close session", zap.Error(err))
	}
	if err := h.eng.Close(); err != nil {
		h.log.Warn("shut down simulator", zap.Error(err))
	}
	_ = h.log.Sync()
}
