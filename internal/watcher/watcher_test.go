package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.md")
	if err := os.WriteFile(path, []byte("## User Prompt\nfirst\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 10)
	w, err := New(path, func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// Several quick writes collapse into one callback.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("## User Prompt\nsecond\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not called")
	}

	time.Sleep(3 * DefaultDebounce)
	if n := len(changed); n != 0 {
		t.Errorf("extra callbacks = %d, want 0", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w, err := New(path, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * DefaultDebounce)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "prompts.md"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("Start() on a missing directory should fail")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() on a stopped watcher error = %v", err)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "prompts.md"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
