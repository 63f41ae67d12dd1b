// Package engine wraps the external HDL simulator behind a narrow interface
// so the rest of the harness can be exercised against a fake.
package engine

import "fmt"

// StartOptions configures a single simulation run.
type StartOptions struct {
	Dir              string   // Working directory for the run; file I/O in the design resolves here
	Flags            []string // Extra simulator flags
	SuppressWarnings bool     // Silence numeric/arith library warnings
	LogAll           bool     // Log every signal (interactive runs only)
	WaveConfig       string   // Waveform setup script to apply before the run, if it exists
	Fast             bool     // Batch-style run: skip all waveform setup
}

// Session is one live simulation of a single entity. At most one session is
// open per engine at any time.
type Session interface {
	// Run advances the simulation by the given virtual-time budget. An
	// explicit failure raised by the design interrupts the run but is
	// absorbed; Run returns an error only when the engine itself breaks.
	Run(limit string) error
	// AtEnd reports whether the simulation has reached its natural end
	// state (no more events scheduled).
	AtEnd() (bool, error)
	// Step advances the simulation by one minimal step, absorbing any
	// failure signal the step triggers.
	Step() error
	// Now returns the current virtual time, e.g. "8 us".
	Now() (string, error)
	// SaveWaveConfig persists the current waveform viewer state to path.
	SaveWaveConfig(path string) error
	// LoadWaveConfig applies a previously saved waveform state.
	LoadWaveConfig(path string) error
	// Output returns the transcript produced by the run so far.
	Output() string
}

// Engine is the external simulator.
type Engine interface {
	// CreateLibrary makes a named library available for compilation.
	// Creating a library that already exists is a no-op.
	CreateLibrary(name string) error
	// Compile compiles one source file into a library. A rejected unit
	// comes back as a *CompileError.
	Compile(path, library string, flags []string) error
	// Start elaborates library.entity and opens a session for it.
	Start(library, entity string, opts StartOptions) (Session, error)
	// Interactive reports whether the engine runs with a user-facing
	// session (waveform viewer attached) rather than in batch mode.
	Interactive() bool
	// Quit terminates any ongoing simulation, including one the user
	// started outside the harness. Safe to call with nothing running.
	Quit() error
}

// CompileError is the engine rejecting a source unit.
type CompileError struct {
	Path       string // Offending source file
	Library    string
	Diagnostic string // Engine output for the failure
}

func (e *CompileError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("compilation of %s into %s failed", e.Path, e.Library)
	}
	return fmt.Sprintf("compilation of %s into %s failed: %s", e.Path, e.Library, e.Diagnostic)
}
