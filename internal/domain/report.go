package domain

// SuiteReportMeta summarizes a suite run for the results file.
type SuiteReportMeta struct {
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Timeouts  int    `json:"timeouts"`
	Failed    int    `json:"failed"`
	Errors    int    `json:"errors"`
	Unknown   int    `json:"unknown"`
	Verdict   string `json:"verdict"`
	Timestamp string `json:"timestamp"`
}

// SuiteReportEntry is one test case in the results file, in summary order.
type SuiteReportEntry struct {
	Test       string `json:"test"` // "library.entity"
	Result     string `json:"result"`
	OutOfDate  bool   `json:"out_of_date"`
	Diagnostic string `json:"diagnostic,omitempty"` // run transcript for non-passes
	Resolved   bool   `json:"resolved,omitempty"`   // user-set in the failures viewer
}

// SuiteReport is the complete persisted output of a suite or summary,
// consumed by the failures viewer.
type SuiteReport struct {
	Meta    SuiteReportMeta    `json:"meta"`
	Entries []SuiteReportEntry `json:"entries"`
}
