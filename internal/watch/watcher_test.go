package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"vrt/internal/engine/enginetest"
	"vrt/internal/registry"
)

func newFixture(t *testing.T) (*registry.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "design.vhd")
	if err := os.WriteFile(src, []byte("entity design is end;"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := registry.New(enginetest.New(), zap.NewNop())
	if err := reg.Register(src, "work", nil); err != nil {
		t.Fatal(err)
	}
	return reg, src
}

func TestWatcher_TriggersOnSourceChange(t *testing.T) {
	reg, src := newFixture(t)

	changed := make(chan struct{}, 1)
	w, err := New(reg, zap.NewNop(), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	if err := os.WriteFile(src, []byte("entity design is end; -- edited"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change callback after editing a registered source")
	}
}

func TestWatcher_IgnoresUnregisteredFiles(t *testing.T) {
	reg, src := newFixture(t)

	changed := make(chan struct{}, 1)
	w, err := New(reg, zap.NewNop(), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	other := filepath.Join(filepath.Dir(src), "notes.txt")
	if err := os.WriteFile(other, []byte("scratch"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		t.Fatal("unexpected callback for an unregistered file")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	reg, _ := newFixture(t)

	w, err := New(reg, zap.NewNop(), func() {})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	w.Start(ctx)
	w.Stop()
	w.Stop()
}
