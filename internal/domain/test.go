package domain

// TestID identifies a test case in the catalog. IDs are assigned at
// registration time and stay stable for the lifetime of the catalog.
type TestID int

// NoTest is the zero value for "no test selected".
const NoTest TestID = -1

// TestCase is a named executable entity plus its run configuration.
type TestCase struct {
	ID        TestID
	Library   string // Library containing the compiled entity
	Entity    string // Name of the toplevel entity to simulate
	WorkDir   string // Directory the test runs relative to, for file I/O inside the design
	TimeLimit string // Virtual-time budget, e.g. "10 ms"
	Flags     []string

	SuppressWarnings bool   // Suppress numeric/arith library warnings during the run
	LogAll           bool   // Log every signal by default when running interactively
	WaveConfig       string // Waveform viewer setup script, empty for defaults

	Result      Result
	ResultValid bool   // False once any recompilation happened after the run
	LastOutput  string // Transcript of the most recent run, for the failure viewer
}

// Name returns the qualified "library.entity" name of the test case.
func (tc *TestCase) Name() string {
	return tc.Library + "." + tc.Entity
}
