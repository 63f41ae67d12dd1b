package domain

// Result classifies the outcome of a single test run.
type Result int

const (
	// ResultUnknown means the test has never been run.
	ResultUnknown Result = iota
	// ResultPassed means the simulation halted naturally before the time limit.
	ResultPassed
	// ResultTimeout means the virtual-time budget ran out first.
	ResultTimeout
	// ResultFailed means the design raised an explicit failure.
	ResultFailed
	// ResultError means the run could not be started or aborted abnormally.
	ResultError
)

// String returns the lowercase name used in output and the results file.
func (r Result) String() string {
	switch r {
	case ResultPassed:
		return "passed"
	case ResultTimeout:
		return "timeout"
	case ResultFailed:
		return "failed"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Weight orders results by urgency for the summary: passes sort first,
// never-run cases last. Stale results weigh one step heavier than fresh
// ones so an out-of-date pass still sorts below a fresh one.
func (r Result) Weight(valid bool) int {
	var w int
	switch r {
	case ResultPassed:
		w = 0
	case ResultTimeout:
		w = 2
	case ResultFailed:
		w = 4
	case ResultError:
		w = 6
	default:
		w = 8
	}
	if !valid {
		w++
	}
	return w
}

// ParseResult is the inverse of String. Anything unrecognized parses as
// unknown.
func ParseResult(s string) Result {
	switch s {
	case "passed":
		return ResultPassed
	case "timeout":
		return ResultTimeout
	case "failed":
		return ResultFailed
	case "error":
		return ResultError
	default:
		return ResultUnknown
	}
}

// SuiteResult is the aggregate verdict over all test cases.
type SuiteResult int

const (
	// SuiteIncomplete means at least one case is unknown or out of date.
	SuiteIncomplete SuiteResult = iota
	// SuitePassed means every case passed with a fresh result.
	SuitePassed
	// SuiteFailed means every result is fresh but at least one is not a pass.
	SuiteFailed
)

// ParseSuiteResult is the inverse of SuiteResult.String.
func ParseSuiteResult(s string) SuiteResult {
	switch s {
	case "passed":
		return SuitePassed
	case "failed":
		return SuiteFailed
	default:
		return SuiteIncomplete
	}
}

// String returns the lowercase verdict name.
func (sr SuiteResult) String() string {
	switch sr {
	case SuitePassed:
		return "passed"
	case SuiteFailed:
		return "failed"
	default:
		return "incomplete"
	}
}
