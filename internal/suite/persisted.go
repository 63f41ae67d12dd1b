package suite

import "vrt/internal/domain"

// FromPersisted rebuilds a report from the results file, so a summary can
// be printed without opening the simulator.
func FromPersisted(pr *domain.SuiteReport) *Report {
	r := &Report{Verdict: domain.ParseSuiteResult(pr.Meta.Verdict)}
	for _, e := range pr.Entries {
		r.Entries = append(r.Entries, Entry{
			ID:         domain.NoTest,
			Name:       e.Test,
			Result:     domain.ParseResult(e.Result),
			OutOfDate:  e.OutOfDate,
			Diagnostic: e.Diagnostic,
		})
	}
	return r
}
