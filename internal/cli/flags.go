package cli

import "vrt/internal/config"

// Flags holds command-line flags
type Flags struct {
	Gui      bool
	Debug    bool
	Force    bool
	Manifest string
	Output   string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Gui:      f.Gui,
		Debug:    f.Debug,
		Force:    f.Force,
		Manifest: f.Manifest,
		Output:   f.Output,
	}
}
