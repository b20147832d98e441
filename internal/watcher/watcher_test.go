package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_ChangeTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bib.csv")
	if err := writeFile(path, "title\n"); err != nil {
		t.Fatal(err)
	}

	var changed []string
	var mu sync.Mutex
	onChange := func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	}

	w := NewWatcher(path, onChange, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(path, "title\nFoo\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	count := len(changed)
	mu.Unlock()
	if count < 1 {
		t.Errorf("expected at least one change callback, got %d", count)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bib.csv")
	if err := writeFile(path, "title\n"); err != nil {
		t.Fatal(err)
	}

	var changed []string
	var mu sync.Mutex
	onChange := func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	}

	w := NewWatcher(path, onChange, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "other.csv"), "x\n"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(changed) != 0 {
		t.Errorf("expected no callbacks for sibling files, got %v", changed)
	}
}

func TestWatcher_DebounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bib.csv")
	if err := writeFile(path, "title\n"); err != nil {
		t.Fatal(err)
	}

	var changed []string
	var mu sync.Mutex
	onChange := func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	}

	w := NewWatcher(path, onChange, WithDebounce(200*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Rapid writes well inside the debounce window.
	for i := 0; i < 5; i++ {
		if err := writeFile(path, "title\nrow\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(600 * time.Millisecond)

	mu.Lock()
	count := len(changed)
	mu.Unlock()
	if count != 1 {
		t.Errorf("expected writes to coalesce into one callback, got %d", count)
	}
}

func TestWatcher_Start_missingDirectory(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "nope", "bib.csv")

	w := NewWatcher(path, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error for missing parent directory")
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bib.csv")

	w := NewWatcher(path, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start should be a no-op, got %v", err)
	}
	if got := w.Path(); got != filepath.Clean(path) {
		t.Errorf("Path() = %q", got)
	}
}

func TestWatcher_StopDuringEvents(t *testing.T) {
	// Stop releases the fsnotify handle while the event loop is mid-read;
	// the loop must drain cleanly rather than touch the released handle.
	dir := t.TempDir()
	path := filepath.Join(dir, "bib.csv")
	if err := writeFile(path, "title\n"); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, func(string) {}, WithDebounce(10*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	writing := make(chan struct{})
	go func() {
		defer close(writing)
		for i := 0; i < 50; i++ {
			_ = writeFile(path, "title\nrow\n")
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	w.Stop()
	w.Stop() // idempotent
	<-writing
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
