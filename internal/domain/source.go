package domain

import "time"

// SourceUnit is a single source file compiled into a named library.
// Identity is Path; registering the same path again updates the unit in place.
type SourceUnit struct {
	Path    string   // Full path to the source file
	Library string   // Library the unit is compiled into
	Flags   []string // Extra compiler flags for this unit

	// Stamp is the modification time the file had when it was last
	// successfully compiled. Zero means the unit has never been compiled.
	// When Stamp equals the file's current mtime, the compiled artifact
	// reflects that exact content (up to filesystem time resolution).
	Stamp time.Time
}
