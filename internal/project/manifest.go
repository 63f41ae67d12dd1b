// Package project loads the YAML manifest describing a design's sources
// and test cases and registers them with the harness.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vrt/internal/catalog"
	"vrt/internal/domain"
	"vrt/internal/registry"
)

// Source is one compiled file in the manifest.
type Source struct {
	Path    string   `yaml:"path"`
	Library string   `yaml:"library,omitempty"` // defaults to "work"
	Flags   []string `yaml:"flags,omitempty"`
}

// Test is one test case in the manifest.
type Test struct {
	Library          string   `yaml:"library,omitempty"` // defaults to "work"
	Entity           string   `yaml:"entity"`
	WorkDir          string   `yaml:"workdir,omitempty"` // defaults to the manifest's directory
	TimeLimit        string   `yaml:"time_limit,omitempty"`
	Flags            []string `yaml:"flags,omitempty"`
	SuppressWarnings *bool    `yaml:"suppress_warnings,omitempty"`
	LogAll           *bool    `yaml:"log_all,omitempty"`
	WaveConfig       string   `yaml:"wave_config,omitempty"`
}

// Manifest is the parsed project file. Sources are listed in compile
// order; tests in catalog order.
type Manifest struct {
	Sources []Source `yaml:"sources"`
	Tests   []Test   `yaml:"tests"`

	dir string // directory of the manifest file, for resolving relative paths
}

// Defaults fill in manifest fields that were left out.
type Defaults struct {
	TimeLimit        string
	SuppressWarnings bool
	LogAll           bool
}

// Load reads and parses a manifest file. Relative paths inside the
// manifest resolve against the manifest's own directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	m.dir = filepath.Dir(abs)
	return &m, nil
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Apply registers every source and test case, in manifest order.
func (m *Manifest) Apply(reg *registry.Registry, cat *catalog.Catalog, def Defaults) error {
	for i, src := range m.Sources {
		if src.Path == "" {
			return fmt.Errorf("source %d: missing path", i)
		}
		lib := src.Library
		if lib == "" {
			lib = "work"
		}
		if err := reg.Register(m.resolve(src.Path), lib, src.Flags); err != nil {
			return fmt.Errorf("source %s: %w", src.Path, err)
		}
	}

	for i, tst := range m.Tests {
		if tst.Entity == "" {
			return fmt.Errorf("test %d: missing entity", i)
		}
		lib := tst.Library
		if lib == "" {
			lib = "work"
		}
		workDir := m.resolve(tst.WorkDir)
		if workDir == "" {
			workDir = m.dir
		}
		limit := tst.TimeLimit
		if limit == "" {
			limit = def.TimeLimit
		}
		suppress := def.SuppressWarnings
		if tst.SuppressWarnings != nil {
			suppress = *tst.SuppressWarnings
		}
		logAll := def.LogAll
		if tst.LogAll != nil {
			logAll = *tst.LogAll
		}
		cat.Register(domain.TestCase{
			Library:          lib,
			Entity:           tst.Entity,
			WorkDir:          workDir,
			TimeLimit:        limit,
			Flags:            tst.Flags,
			SuppressWarnings: suppress,
			LogAll:           logAll,
			WaveConfig:       m.resolve(tst.WaveConfig),
		})
	}
	return nil
}
