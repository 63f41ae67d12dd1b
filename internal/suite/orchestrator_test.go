package suite

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/compile"
	"vrt/internal/domain"
	"vrt/internal/engine/enginetest"
	"vrt/internal/registry"
	"vrt/internal/run"
	"vrt/internal/storage"
)

type fixture struct {
	eng      *enginetest.Fake
	cat      *catalog.Catalog
	orch     *Orchestrator
	ids      map[string]domain.TestID
	compiler *compile.Scheduler
	sess     *run.Session
	src      string
}

// newFixture builds a harness around one compiled source and the given
// test entities, all in library "work".
func newFixture(t *testing.T, entities ...string) *fixture {
	t.Helper()
	libDir := t.TempDir()
	workDir := t.TempDir()

	src := filepath.Join(libDir, "design.vhd")
	if err := os.WriteFile(src, []byte("entity design is end;\n"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	eng := enginetest.New()
	cat := catalog.New()
	reg := registry.New(eng, zap.NewNop())
	if err := reg.Register(src, "work", nil); err != nil {
		t.Fatalf("register source: %v", err)
	}

	manifest := storage.NewManifest(libDir)
	sess := run.NewSession(eng, cat, manifest, libDir, zap.NewNop())
	compiler := compile.New(reg, cat, eng, zap.NewNop())
	compiler.SetCloser(sess)
	runner := run.NewClassifier(cat, eng, sess, compiler, manifest, zap.NewNop())
	store := storage.NewJSONStore(filepath.Join(libDir, "results.json"))
	orch := New(cat, compiler, runner, store, zap.NewNop())

	ids := make(map[string]domain.TestID)
	for _, entity := range entities {
		ids[entity] = cat.Register(domain.TestCase{
			Library:   "work",
			Entity:    entity,
			WorkDir:   workDir,
			TimeLimit: "10 ms",
		})
	}
	return &fixture{
		eng:      eng,
		cat:      cat,
		orch:     orch,
		ids:      ids,
		compiler: compiler,
		sess:     sess,
		src:      src,
	}
}

func TestOrchestrator_Run(t *testing.T) {
	t.Run("runs every pending case in catalog order", func(t *testing.T) {
		f := newFixture(t, "a_tc", "b_tc", "c_tc")

		verdict, err := f.orch.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if verdict != domain.SuitePassed {
			t.Errorf("verdict = %s, want passed", verdict)
		}
		if len(f.eng.Starts) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(f.eng.Starts))
		}
		want := []string{"work.a_tc", "work.b_tc", "work.c_tc"}
		for i, rec := range f.eng.Starts {
			if rec.Name != want[i] {
				t.Errorf("run %d = %s, want %s", i, rec.Name, want[i])
			}
			if !rec.Opts.Fast {
				t.Errorf("suite run %d should be fast mode", i)
			}
		}
	})

	t.Run("skips cases with fresh results", func(t *testing.T) {
		f := newFixture(t, "a_tc", "b_tc")
		if _, err := f.orch.Run(); err != nil {
			t.Fatalf("first run: %v", err)
		}
		f.eng.Starts = nil

		verdict, err := f.orch.Run()
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if len(f.eng.Starts) != 0 {
			t.Errorf("second run with fresh results should run nothing, ran %d", len(f.eng.Starts))
		}
		if verdict != domain.SuitePassed {
			t.Errorf("verdict = %s, want passed", verdict)
		}
	})

	t.Run("never incomplete when everything is fresh", func(t *testing.T) {
		f := newFixture(t, "a_tc", "b_tc")
		f.eng.AddScript("work.b_tc", enginetest.FailScript())

		verdict, err := f.orch.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if verdict == domain.SuiteIncomplete {
			t.Error("suite run left pending cases behind")
		}
		if verdict != domain.SuiteFailed {
			t.Errorf("verdict = %s, want failed", verdict)
		}
	})
}

func TestOrchestrator_Report(t *testing.T) {
	t.Run("orders by urgency, passes first", func(t *testing.T) {
		f := newFixture(t, "p_tc", "u_tc", "f_tc", "t_tc")
		set := func(entity string, res domain.Result, valid bool) {
			tc := f.cat.Get(f.ids[entity])
			tc.Result = res
			tc.ResultValid = valid
		}
		set("p_tc", domain.ResultPassed, true)
		// u_tc stays unknown
		set("f_tc", domain.ResultFailed, true)
		set("t_tc", domain.ResultTimeout, false)

		r := f.orch.Report()
		var order []string
		for _, e := range r.Entries {
			order = append(order, e.Name)
		}
		want := []string{"work.p_tc", "work.t_tc", "work.f_tc", "work.u_tc"}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("order = %v, want %v", order, want)
			}
		}
		if r.Verdict != domain.SuiteIncomplete {
			t.Errorf("verdict = %s, want incomplete", r.Verdict)
		}
	})

	t.Run("verdicts", func(t *testing.T) {
		tests := []struct {
			name   string
			result domain.Result
			valid  bool
			want   domain.SuiteResult
		}{
			{"all fresh passes", domain.ResultPassed, true, domain.SuitePassed},
			{"stale pass", domain.ResultPassed, false, domain.SuiteIncomplete},
			{"fresh timeout", domain.ResultTimeout, true, domain.SuiteFailed},
			{"fresh error", domain.ResultError, true, domain.SuiteFailed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, "a_tc")
				tc := f.cat.Get(f.ids["a_tc"])
				tc.Result = tt.result
				tc.ResultValid = tt.valid

				if got := f.orch.Report().Verdict; got != tt.want {
					t.Errorf("verdict = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("enumerates every case", func(t *testing.T) {
		f := newFixture(t, "a_tc", "b_tc", "c_tc")
		if got := len(f.orch.Report().Entries); got != 3 {
			t.Errorf("report has %d entries, want 3", got)
		}
	})
}

func TestOrchestrator_PersistsReport(t *testing.T) {
	libDir := t.TempDir()
	f := newFixture(t, "a_tc")
	store := storage.NewJSONStore(filepath.Join(libDir, "results.json"))
	f.orch.store = store
	f.eng.AddScript("work.a_tc", enginetest.Script{Output: "Failure: assertion failed"})

	if _, err := f.orch.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	report, err := store.Load()
	if err != nil {
		t.Fatalf("load persisted report: %v", err)
	}
	if report.Meta.Total != 1 || report.Meta.Failed != 1 {
		t.Errorf("meta = %+v, want 1 total / 1 failed", report.Meta)
	}
	if len(report.Entries) != 1 || report.Entries[0].Diagnostic == "" {
		t.Error("failing entry should carry its run transcript")
	}
}

type fakeProgress struct {
	started  int
	steps    []string
	finished bool
}

func (p *fakeProgress) Start(total int) { p.started = total }

func (p *fakeProgress) Step(name string, _ domain.Result) { p.steps = append(p.steps, name) }

func (p *fakeProgress) Finish() { p.finished = true }

func TestOrchestrator_Progress(t *testing.T) {
	f := newFixture(t, "a_tc", "b_tc")
	progress := &fakeProgress{}
	f.orch.SetProgress(progress)

	if _, err := f.orch.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if progress.started != 2 || len(progress.steps) != 2 || !progress.finished {
		t.Errorf("progress saw start=%d steps=%v finished=%v", progress.started, progress.steps, progress.finished)
	}
}
