package config

const (
	// DefaultSimulator is the simulator binary resolved from PATH.
	DefaultSimulator = "vsim"
	// DefaultLibraryDir holds compiled libraries and harness sidecars.
	DefaultLibraryDir = ".vrt"
	// DefaultManifest is the project manifest file name.
	DefaultManifest = "vrt.yaml"
	// DefaultResultsFile is the suite report file name, under the library dir.
	DefaultResultsFile = "results.json"
	// DefaultTimeLimit is the virtual-time budget for tests that set none.
	DefaultTimeLimit = "10 ms"
)
