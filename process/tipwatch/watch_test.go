package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"stonktip/pkg/jobs"
	"stonktip/pkg/tip"
)

type stubIntake struct {
	mu   sync.Mutex
	seen []jobs.Submission
}

// Submit reads files whose content starts with "ok".
func (s *stubIntake) Submit(ctx context.Context, sub jobs.Submission) (jobs.Result, error) {
	s.mu.Lock()
	s.seen = append(s.seen, sub)
	s.mu.Unlock()
	if strings.HasPrefix(string(sub.Data), "ok") {
		return jobs.Result{Success: true, Tip: tip.New(tip.Celine, 1, 2, 3)}, nil
	}
	return jobs.Result{Success: false, Tip: tip.Failed()}, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestIsSupportedExt(t *testing.T) {
	cases := map[string]bool{
		"a.png":       true,
		"b.JPG":       true,
		"c.jpeg":      true,
		"d.txt":       false,
		".hidden.png": false,
		"e.png.part":  false,
	}
	for name, want := range cases {
		if got := isSupportedExt(name); got != want {
			t.Fatalf("isSupportedExt(%q)=%v want %v", name, got, want)
		}
	}
}

func TestListImageFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.png", "x")
	writeFile(t, dir, "a.jpg", "x")
	writeFile(t, dir, "notes.txt", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got := listImageFiles(dir)
	if len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.png" {
		t.Fatalf("unexpected files: %v", got)
	}
	if listImageFiles(filepath.Join(dir, "missing")) != nil {
		t.Fatalf("expected nil for missing dir")
	}
}

func TestScanMovesFiles(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")
	writeFile(t, dir, "good.png", "ok")
	writeFile(t, dir, "bad.png", "garbage")

	stub := &stubIntake{}
	w := &watcher{intake: stub, channel: "local", processed: processed}
	w.scan(context.Background(), dir, listImageFiles(dir), 2)

	if w.read.Load() != 1 || w.unreadable.Load() != 1 {
		t.Fatalf("counts read=%d unreadable=%d", w.read.Load(), w.unreadable.Load())
	}
	if _, err := os.Stat(filepath.Join(processed, "good.png")); err != nil {
		t.Fatalf("good.png not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(processed, "failed", "bad.png")); err != nil {
		t.Fatalf("bad.png not moved to failed: %v", err)
	}
	if left := listImageFiles(dir); len(left) != 0 {
		t.Fatalf("expected empty source dir, got %v", left)
	}
	for _, s := range stub.seen {
		if s.Channel != "local" || !strings.HasPrefix(s.SourceURL, "file://") {
			t.Fatalf("unexpected submission %+v", s)
		}
	}
}

func TestScanDryRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.png", "ok")
	w := &watcher{intake: &stubIntake{}, processed: filepath.Join(dir, "processed"), dryRun: true}
	w.scan(context.Background(), dir, []string{"good.png"}, 1)
	if _, err := os.Stat(filepath.Join(dir, "good.png")); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
}

func TestRunWorkerPoolVisitsAll(t *testing.T) {
	ch := make(chan string, 10)
	for i := 0; i < 10; i++ {
		ch <- "f"
	}
	close(ch)
	var mu sync.Mutex
	n := 0
	runWorkerPool(context.Background(), 3, ch, func(string) {
		mu.Lock()
		n++
		mu.Unlock()
	})
	if n != 10 {
		t.Fatalf("visited %d want 10", n)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	if effectiveWorkers(4) != 4 {
		t.Fatalf("explicit workers ignored")
	}
	if effectiveWorkers(0) < 1 {
		t.Fatalf("default workers must be positive")
	}
}

func TestDebounceEmitsSettledFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan fsnotify.Event, 4)
	out := make(chan string, 4)
	go debounce(ctx, events, nil, out, 20*time.Millisecond)

	events <- fsnotify.Event{Name: "/in/a.png", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "/in/notes.txt", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "/in/b.png", Op: fsnotify.Remove}
	select {
	case name := <-out:
		if name != "a.png" {
			t.Fatalf("got %q want a.png", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("settled file never emitted")
	}
}

func TestDebounceStopsWhenNobodyReads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan fsnotify.Event, 1)
	out := make(chan string) // no reader
	done := make(chan struct{})
	go func() {
		debounce(ctx, events, nil, out, 5*time.Millisecond)
		close(done)
	}()
	events <- fsnotify.Event{Name: "/in/a.png", Op: fsnotify.Create}
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("debounce blocked after cancel")
	}
}
