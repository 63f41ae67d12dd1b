// Package enginetest provides a scripted in-memory engine for tests.
package enginetest

import (
	"fmt"
	"os"

	"vrt/internal/engine"
)

// Script describes how one simulated run behaves: what the two status
// probes see and whether starting or running breaks hard.
type Script struct {
	EndAfterRun  bool // first probe: at natural end after the timed run
	EndAfterStep bool // second probe: at natural end after the minimal step
	StartErr     error
	RunErr       error
	Output       string
}

// PassScript is a run that halts naturally before the time limit.
func PassScript() Script { return Script{EndAfterStep: true} }

// TimeoutScript is a run that exhausts its budget.
func TimeoutScript() Script { return Script{EndAfterRun: true} }

// FailScript is a run interrupted by an explicit failure report.
func FailScript() Script { return Script{} }

// StartRecord captures one Start call.
type StartRecord struct {
	Name string // "library.entity"
	Opts engine.StartOptions
}

// Fake is a scripted engine.Engine. Scripts are keyed by "library.entity"
// and consumed in order, so a test can make the same case fail once and
// then pass.
type Fake struct {
	Gui bool

	// FailCompilePath makes Compile reject that source file.
	FailCompilePath string
	FailCompileDiag string

	Scripts map[string][]Script

	Libraries []string
	Compiled  []string // paths, in compile order
	Starts    []StartRecord
	QuitCalls int

	NowValue string // returned by Session.Now, defaults to "0 ns"

	// Last is the most recently started session. Unlike the open session
	// it survives Quit, so tests can inspect closed runs.
	Last *FakeSession

	open *FakeSession
}

// New returns an empty batch-mode fake.
func New() *Fake {
	return &Fake{Scripts: make(map[string][]Script)}
}

// AddScript queues the next run behavior for "library.entity".
func (f *Fake) AddScript(name string, s Script) {
	f.Scripts[name] = append(f.Scripts[name], s)
}

// OpenSession returns the currently started session, if any.
func (f *Fake) OpenSession() *FakeSession { return f.open }

func (f *Fake) CreateLibrary(name string) error {
	for _, lib := range f.Libraries {
		if lib == name {
			return nil
		}
	}
	f.Libraries = append(f.Libraries, name)
	return nil
}

func (f *Fake) Compile(path, library string, flags []string) error {
	if path == f.FailCompilePath {
		return &engine.CompileError{Path: path, Library: library, Diagnostic: f.FailCompileDiag}
	}
	f.Compiled = append(f.Compiled, path)
	return nil
}

func (f *Fake) Start(library, entity string, opts engine.StartOptions) (engine.Session, error) {
	name := library + "." + entity
	script := PassScript()
	if queue := f.Scripts[name]; len(queue) > 0 {
		script = queue[0]
		f.Scripts[name] = queue[1:]
	}
	f.Starts = append(f.Starts, StartRecord{Name: name, Opts: opts})
	if script.StartErr != nil {
		return nil, script.StartErr
	}
	now := f.NowValue
	if now == "" {
		now = "0 ns"
	}
	f.open = &FakeSession{script: script, now: now}
	f.Last = f.open
	return f.open, nil
}

func (f *Fake) Interactive() bool { return f.Gui }

func (f *Fake) Quit() error {
	f.QuitCalls++
	f.open = nil
	return nil
}

// FakeSession replays a Script.
type FakeSession struct {
	script  Script
	stepped bool
	now     string

	RunLimits   []string
	SavedConfig string
	LoadedConfig string
}

func (s *FakeSession) Run(limit string) error {
	s.RunLimits = append(s.RunLimits, limit)
	return s.script.RunErr
}

func (s *FakeSession) AtEnd() (bool, error) {
	if s.stepped {
		return s.script.EndAfterStep, nil
	}
	return s.script.EndAfterRun, nil
}

func (s *FakeSession) Step() error {
	s.stepped = true
	return nil
}

func (s *FakeSession) Now() (string, error) { return s.now, nil }

func (s *FakeSession) SaveWaveConfig(path string) error {
	s.SavedConfig = path
	return os.WriteFile(path, []byte("# wave state\n"), 0644)
}

func (s *FakeSession) LoadWaveConfig(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("wave config missing: %w", err)
	}
	s.LoadedConfig = path
	return nil
}

func (s *FakeSession) Output() string { return s.script.Output }
