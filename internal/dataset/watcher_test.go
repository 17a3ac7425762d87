package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seglab/segfeed/pkg/log"
)

func TestWatcher_DirtyOnCreate(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher([]string{dir}, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	if w.Dirty() {
		t.Fatal("Dirty() = true before any change")
	}

	if err := os.WriteFile(filepath.Join(dir, "new.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for !w.Dirty() {
		select {
		case <-deadline:
			t.Fatal("Dirty() never flipped after file creation")
		case <-time.After(10 * time.Millisecond):
		}
	}

	w.ClearDirty()
	if w.Dirty() {
		t.Error("Dirty() = true after ClearDirty()")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "nope")}, log.NewNoopLogger())
	if err == nil {
		t.Error("NewWatcher() on missing directory, want error")
	}
}
