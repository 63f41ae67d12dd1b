package run

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"vrt/internal/catalog"
	"vrt/internal/compile"
	"vrt/internal/domain"
	"vrt/internal/engine/enginetest"
	"vrt/internal/registry"
	"vrt/internal/storage"
)

type fixture struct {
	eng      *enginetest.Fake
	cat      *catalog.Catalog
	sess     *Session
	cls      *Classifier
	id       domain.TestID
	libDir   string
	workDir  string
	manifest *storage.Manifest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	libDir := t.TempDir()
	workDir := t.TempDir()

	eng := enginetest.New()
	cat := catalog.New()
	reg := registry.New(eng, zap.NewNop())
	manifest := storage.NewManifest(libDir)
	sess := NewSession(eng, cat, manifest, libDir, zap.NewNop())
	compiler := compile.New(reg, cat, eng, zap.NewNop())
	cls := NewClassifier(cat, eng, sess, compiler, manifest, zap.NewNop())

	id := cat.Register(domain.TestCase{
		Library:   "work",
		Entity:    "foo_tc",
		WorkDir:   workDir,
		TimeLimit: "10 ms",
	})

	return &fixture{
		eng:      eng,
		cat:      cat,
		sess:     sess,
		cls:      cls,
		id:       id,
		libDir:   libDir,
		workDir:  workDir,
		manifest: manifest,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		endAfterRun  bool
		endAfterStep bool
		want         domain.Result
	}{
		{"halts naturally within budget", false, true, domain.ResultPassed},
		{"budget exhausted exactly at completion", true, true, domain.ResultPassed},
		{"budget exhausted", true, false, domain.ResultTimeout},
		{"explicit failure", false, false, domain.ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.endAfterRun, tt.endAfterStep); got != tt.want {
				t.Errorf("classify(%v, %v) = %s, want %s", tt.endAfterRun, tt.endAfterStep, got, tt.want)
			}
		})
	}
}

func TestClassifier_Run(t *testing.T) {
	outcomes := []struct {
		name   string
		script enginetest.Script
		want   domain.Result
	}{
		{"pass", enginetest.PassScript(), domain.ResultPassed},
		{"timeout", enginetest.TimeoutScript(), domain.ResultTimeout},
		{"fail", enginetest.FailScript(), domain.ResultFailed},
	}
	for _, tt := range outcomes {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.eng.AddScript("work.foo_tc", tt.script)

			got, err := f.cls.Run(f.id, Options{Fast: true})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %s, want %s", got, tt.want)
			}
			tc := f.cat.Get(f.id)
			if tc.Result != tt.want || !tc.ResultValid {
				t.Errorf("catalog not updated: result=%s valid=%v", tc.Result, tc.ResultValid)
			}
		})
	}
}

func TestClassifier_TimeLimit(t *testing.T) {
	t.Run("uses the case's own budget", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.cls.Run(f.id, Options{Fast: true}); err != nil {
			t.Fatalf("run: %v", err)
		}
		sess := f.lastSession(t)
		if len(sess.RunLimits) != 1 || sess.RunLimits[0] != "10 ms" {
			t.Errorf("run limits = %v, want [10 ms]", sess.RunLimits)
		}
	})

	t.Run("explicit limit overrides", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.cls.Run(f.id, Options{TimeLimit: "1 us", Fast: true}); err != nil {
			t.Fatalf("run: %v", err)
		}
		sess := f.lastSession(t)
		if sess.RunLimits[0] != "1 us" {
			t.Errorf("run limit = %s, want 1 us", sess.RunLimits[0])
		}
	})
}

// lastSession digs the most recent fake session out of the engine. Fast
// runs close their session, so the open handle may already be gone.
func (f *fixture) lastSession(t *testing.T) *enginetest.FakeSession {
	t.Helper()
	if f.eng.Last == nil {
		t.Fatal("no session was started")
	}
	return f.eng.Last
}

func TestClassifier_SessionModes(t *testing.T) {
	t.Run("fast run closes and clears the rerun candidate", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.cls.Run(f.id, Options{Fast: true}); err != nil {
			t.Fatalf("run: %v", err)
		}
		if _, open := f.sess.Open(); open {
			t.Error("fast run should not leave a session open")
		}
		if _, ok := f.sess.RerunCandidate(); ok {
			t.Error("fast run should clear the rerun candidate")
		}
		if f.eng.QuitCalls == 0 {
			t.Error("fast run should quit the engine-side session")
		}
	})

	t.Run("interactive run stays open", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.cls.Run(f.id, Options{}); err != nil {
			t.Fatalf("run: %v", err)
		}
		if id, open := f.sess.Open(); !open || id != f.id {
			t.Errorf("expected test %d open, got %d (open=%v)", f.id, id, open)
		}
		if id, ok := f.sess.RerunCandidate(); !ok || id != f.id {
			t.Error("interactive run should become the rerun candidate")
		}
	})

	t.Run("a new run closes the previous session first", func(t *testing.T) {
		f := newFixture(t)
		other := f.cat.Register(domain.TestCase{
			Library: "work", Entity: "bar_tc", WorkDir: f.workDir, TimeLimit: "1 ms",
		})
		if _, err := f.cls.Run(f.id, Options{}); err != nil {
			t.Fatalf("first run: %v", err)
		}
		quits := f.eng.QuitCalls
		if _, err := f.cls.Run(other, Options{}); err != nil {
			t.Fatalf("second run: %v", err)
		}
		if f.eng.QuitCalls <= quits {
			t.Error("starting a new run should quit the previous session")
		}
		if id, _ := f.sess.Open(); id != other {
			t.Errorf("open test = %d, want %d", id, other)
		}
	})
}

func TestClassifier_WorkingDirectory(t *testing.T) {
	f := newFixture(t)
	if _, err := f.cls.Run(f.id, Options{Fast: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(f.eng.Starts) != 1 {
		t.Fatalf("expected 1 start, got %d", len(f.eng.Starts))
	}
	if f.eng.Starts[0].Opts.Dir != f.workDir {
		t.Errorf("run dir = %s, want the case's working directory %s", f.eng.Starts[0].Opts.Dir, f.workDir)
	}
}

func TestClassifier_Cleanup(t *testing.T) {
	f := newFixture(t)

	// A wave dump from the run and a user-owned ini file.
	wlf := filepath.Join(f.workDir, "vsim.wlf")
	if err := os.WriteFile(wlf, []byte("waves"), 0644); err != nil {
		t.Fatalf("write wlf: %v", err)
	}
	ini := filepath.Join(f.workDir, "modelsim.ini")
	if err := os.WriteFile(ini, []byte("[library]"), 0644); err != nil {
		t.Fatalf("write ini: %v", err)
	}

	if _, err := f.cls.Run(f.id, Options{Fast: true}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := os.Stat(wlf); !os.IsNotExist(err) {
		t.Error("harness-created wave dump should be removed on close")
	}
	if _, err := os.Stat(ini); err != nil {
		t.Error("pre-existing ini file belongs to the user and must survive")
	}
	if _, err := os.Stat(filepath.Join(f.libDir, storage.ManifestName)); !os.IsNotExist(err) {
		t.Error("cleanup manifest should be consumed by a proper close")
	}
}

func TestClassifier_StartFailure(t *testing.T) {
	f := newFixture(t)
	f.eng.AddScript("work.foo_tc", enginetest.Script{StartErr: fmt.Errorf("elaboration failed")})

	got, err := f.cls.Run(f.id, Options{Fast: true})
	if err == nil {
		t.Fatal("expected an error when the engine cannot start")
	}
	if got != domain.ResultError {
		t.Errorf("result = %s, want error", got)
	}
	tc := f.cat.Get(f.id)
	if tc.Result != domain.ResultError || !tc.ResultValid {
		t.Errorf("catalog should record the error result, got %s valid=%v", tc.Result, tc.ResultValid)
	}
}

func TestClassifier_Rerun(t *testing.T) {
	t.Run("nothing to rerun", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cls.Rerun()
		var nar *NoActiveRunError
		if !errors.As(err, &nar) {
			t.Fatalf("expected NoActiveRunError, got %v", err)
		}
	})

	t.Run("extends to the open session's current time", func(t *testing.T) {
		f := newFixture(t)
		f.eng.NowValue = "8 us"
		if _, err := f.cls.Run(f.id, Options{}); err != nil {
			t.Fatalf("run: %v", err)
		}

		if _, err := f.cls.Rerun(); err != nil {
			t.Fatalf("rerun: %v", err)
		}
		sess := f.eng.OpenSession()
		if sess == nil {
			t.Fatal("rerun should leave an open session")
		}
		if len(sess.RunLimits) != 1 || sess.RunLimits[0] != "8 us" {
			t.Errorf("rerun limit = %v, want [8 us]", sess.RunLimits)
		}
	})
}
