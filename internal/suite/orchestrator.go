// Package suite runs the whole test catalog, aggregates results into a
// verdict, and drives the guided debug loop.
package suite

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/compile"
	"vrt/internal/domain"
	"vrt/internal/run"
	"vrt/internal/storage"
)

// Progress receives per-case completion while a suite runs.
type Progress interface {
	Start(total int)
	Step(name string, result domain.Result)
	Finish()
}

// Entry is one test case in a report, annotated with freshness.
type Entry struct {
	ID         domain.TestID
	Name       string
	Result     domain.Result
	OutOfDate  bool
	Diagnostic string
}

// Report lists every test case in summary order together with the suite
// verdict. The most urgent cases come last so they end up closest to the
// bottom of the output.
type Report struct {
	Entries []Entry
	Verdict domain.SuiteResult
}

// Orchestrator runs the test suite through the compile scheduler and the
// run classifier, one case at a time in catalog order.
type Orchestrator struct {
	cat      *catalog.Catalog
	compiler *compile.Scheduler
	runner   *run.Classifier
	store    storage.Store
	log      *zap.Logger
	progress Progress
}

// New wires an orchestrator. store may be nil to skip report persistence.
func New(cat *catalog.Catalog, compiler *compile.Scheduler, runner *run.Classifier, store storage.Store, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cat:      cat,
		compiler: compiler,
		runner:   runner,
		store:    store,
		log:      log,
	}
}

// SetProgress sets the progress sink for suite runs.
func (o *Orchestrator) SetProgress(p Progress) {
	o.progress = p
}

// Run recompiles, then runs every test case that has never been run or
// whose result is out of date, in catalog order and in fast mode. The
// report is persisted afterwards.
func (o *Orchestrator) Run() (domain.SuiteResult, error) {
	if _, err := o.compiler.Recompile(false); err != nil {
		return domain.SuiteIncomplete, err
	}

	var pending []domain.TestID
	for id, tc := range o.cat.All() {
		if tc.Result == domain.ResultUnknown || !tc.ResultValid {
			pending = append(pending, id)
		}
	}

	if o.progress != nil && len(pending) > 0 {
		o.progress.Start(len(pending))
	}
	for _, id := range pending {
		res, err := o.runner.Run(id, run.Options{Fast: true})
		if err != nil {
			if o.progress != nil {
				o.progress.Finish()
			}
			return domain.SuiteIncomplete, err
		}
		if o.progress != nil {
			o.progress.Step(o.cat.Get(id).Name(), res)
		}
	}
	if o.progress != nil && len(pending) > 0 {
		o.progress.Finish()
	}

	report := o.Report()
	o.persist(report)
	return report.Verdict, nil
}

// Report enumerates every test case ordered by severity weight, passes
// first and never-run cases last, and computes the suite verdict.
func (o *Orchestrator) Report() *Report {
	r := &Report{}
	for _, tc := range o.cat.All() {
		diag := ""
		if tc.Result != domain.ResultPassed {
			diag = tc.LastOutput
		}
		r.Entries = append(r.Entries, Entry{
			ID:         tc.ID,
			Name:       tc.Name(),
			Result:     tc.Result,
			OutOfDate:  !tc.ResultValid,
			Diagnostic: diag,
		})
	}
	sort.SliceStable(r.Entries, func(i, j int) bool {
		wi := r.Entries[i].Result.Weight(!r.Entries[i].OutOfDate)
		wj := r.Entries[j].Result.Weight(!r.Entries[j].OutOfDate)
		return wi < wj
	})

	done := true
	passed := true
	for _, e := range r.Entries {
		if e.Result == domain.ResultUnknown || e.OutOfDate {
			done = false
		}
		if e.Result != domain.ResultPassed {
			passed = false
		}
	}
	switch {
	case !done:
		r.Verdict = domain.SuiteIncomplete
	case passed:
		r.Verdict = domain.SuitePassed
	default:
		r.Verdict = domain.SuiteFailed
	}
	return r
}

func (o *Orchestrator) persist(r *Report) {
	if o.store == nil {
		return
	}
	out := &domain.SuiteReport{
		Meta: domain.SuiteReportMeta{
			Total:     len(r.Entries),
			Verdict:   r.Verdict.String(),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
	for _, e := range r.Entries {
		switch e.Result {
		case domain.ResultPassed:
			out.Meta.Passed++
		case domain.ResultTimeout:
			out.Meta.Timeouts++
		case domain.ResultFailed:
			out.Meta.Failed++
		case domain.ResultError:
			out.Meta.Errors++
		default:
			out.Meta.Unknown++
		}
		out.Entries = append(out.Entries, domain.SuiteReportEntry{
			Test:       e.Name,
			Result:     e.Result.String(),
			OutOfDate:  e.OutOfDate,
			Diagnostic: e.Diagnostic,
		})
	}
	if err := o.store.Save(out); err != nil {
		o.log.Warn("persist suite report", zap.Error(err))
	}
}
