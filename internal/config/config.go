// Package config holds harness configuration, layered from defaults, a
// .env file, environment variables, and command-line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the harness.
type Config struct {
	// Simulator is the vsim-compatible binary to drive.
	Simulator string
	// LibraryDir is where compiled libraries and sidecar files live.
	LibraryDir string
	// Manifest is the path of the project manifest.
	Manifest string
	// ResultsFile is the suite report file name inside LibraryDir.
	ResultsFile string

	// Per-test defaults, overridable in the manifest.
	DefaultTimeLimit string
	SuppressWarnings bool
	LogAll           bool

	// Command flags
	Flags Flags
}

// Flags holds command-line flags shared across subcommands.
type Flags struct {
	Gui      bool   // drive the simulator with a user-facing session
	Debug    bool   // verbose logging
	Force    bool   // recompile everything regardless of timestamps
	Manifest string // project manifest override
	Output   string // mirror suite/summary output to this file
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Simulator:        DefaultSimulator,
		LibraryDir:       DefaultLibraryDir,
		Manifest:         DefaultManifest,
		ResultsFile:      DefaultResultsFile,
		DefaultTimeLimit: DefaultTimeLimit,
		LogAll:           true,
	}
}

// Load creates a config from defaults, a .env file in the working
// directory if present, and the process environment.
func Load() *Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := New()
	if v := os.Getenv("VRT_SIM"); v != "" {
		cfg.Simulator = v
	}
	if v := os.Getenv("VRT_LIBDIR"); v != "" {
		cfg.LibraryDir = v
	}
	if v := os.Getenv("VRT_MANIFEST"); v != "" {
		cfg.Manifest = v
	}
	if v := os.Getenv("VRT_TIME_LIMIT"); v != "" {
		cfg.DefaultTimeLimit = v
	}
	if v := os.Getenv("VRT_SUPPRESS_WARNINGS"); v == "1" || v == "true" {
		cfg.SuppressWarnings = true
	}
	if v := os.Getenv("VRT_NO_LOG_ALL"); v == "1" || v == "true" {
		cfg.LogAll = false
	}
	return cfg
}

// Apply copies parsed flags into the config.
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.Manifest != "" {
		c.Manifest = flags.Manifest
	}
}

// LibraryPath returns the absolute library directory, so sidecar files
// resolve the same way regardless of where a test run chdirs the engine.
func (c *Config) LibraryPath() string {
	if abs, err := filepath.Abs(c.LibraryDir); err == nil {
		return abs
	}
	return c.LibraryDir
}

// ResultsPath returns the absolute path of the suite report file.
func (c *Config) ResultsPath() string {
	return filepath.Join(c.LibraryPath(), c.ResultsFile)
}
