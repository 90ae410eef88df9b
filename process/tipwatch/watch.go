package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"stonktip/pkg/jobs"
)

// submitter is satisfied by *jobs.Intake.
type submitter interface {
	Submit(ctx context.Context, s jobs.Submission) (jobs.Result, error)
}

type watcher struct {
	intake    submitter
	channel   string
	processed string
	dryRun    bool

	read       atomic.Int64
	unreadable atomic.Int64
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	// partial downloads and editor temp files
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

func (w *watcher) scan(ctx context.Context, dir string, files []string, workers int) {
	ch := make(chan string, len(files))
	for _, f := range files {
		ch <- f
	}
	close(ch)
	runWorkerPool(ctx, workers, ch, func(name string) { w.processFile(ctx, dir, name) })
}

// runWorkerPool calls fn for every name received until in is closed or ctx is done.
func runWorkerPool(ctx context.Context, workers int, in <-chan string, fn func(string)) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case name, ok := <-in:
					if !ok {
						return
					}
					fn(name)
				}
			}
		}()
	}
	wg.Wait()
}

// processFile reads one screenshot and moves it under w.processed, into failed/ when unreadable.
func (w *watcher) processFile(ctx context.Context, dir, name string) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("WARN read %s: %v", path, err)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	res, err := w.intake.Submit(ctx, jobs.Submission{Data: data, SourceURL: "file://" + filepath.ToSlash(abs), Channel: w.channel})
	if err != nil {
		// storage errors leave the file in place for the next scan
		log.Printf("ERROR submit %s: %v", name, err)
		return
	}
	dst := w.processed
	if res.Success {
		w.read.Add(1)
		logV("TIP %s %s", name, res.Tip)
	} else {
		w.unreadable.Add(1)
		logV("UNREADABLE %s", name)
		dst = filepath.Join(dst, "failed")
	}
	if w.dryRun {
		return
	}
	if err := moveTo(path, dst); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	}
}

// watchDirectory feeds newly created files to the worker pool once they stop changing.
// It returns when ctx is cancelled.
func (w *watcher) watchDirectory(ctx context.Context, dir string, workers int) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go debounce(ctx, fw.Events, fw.Errors, fileCh, 300*time.Millisecond)
	runWorkerPool(ctx, workers, fileCh, func(name string) { w.processFile(ctx, dir, name) })
	return nil
}

// debounce emits a file name once no write or create event has been seen for quiet.
// out is closed when ctx is done or the watcher shuts down.
func debounce(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, out chan<- string, quiet time.Duration) {
	defer close(out)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(quiet / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isSupportedExt(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > quiet {
					select {
					case out <- name:
					case <-ctx.Done():
						return
					}
					delete(pending, name)
				}
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

// moveTo moves src into dir, falling back to copy+remove across devices.
func moveTo(src, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
