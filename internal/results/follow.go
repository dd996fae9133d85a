package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"owldlv/internal/logging"
)

// Follower prints the result artifact every time a solver run replaces it.
//
// The parent folder is watched rather than the file: results are published
// by rename, which would detach a watch on the file itself.
type Follower struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	out         io.Writer
	debounceDur time.Duration
	pending     time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	printed     int
}

// NewFollower creates a follower for path writing to out.
func NewFollower(path string, out io.Writer) (*Follower, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	return &Follower{
		watcher:     watcher,
		path:        abs,
		out:         out,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start watches the result folder and prints the current result, if any.
func (f *Follower) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create result folder: %w", err)
	}
	if err := f.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.running = true
	logging.Results("Following %s", f.path)

	if _, err := os.Stat(f.path); err == nil {
		f.printLocked()
	}

	go f.run(ctx)
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (f *Follower) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		f.watcher.Close()
		return
	}
	f.running = false
	f.mu.Unlock()

	close(f.stopCh)
	<-f.doneCh

	if err := f.watcher.Close(); err != nil {
		logging.Get(logging.CategoryResults).Error("Follower: error closing watcher: %v", err)
	}
}

// Follow runs until ctx is done.
func (f *Follower) Follow(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		f.watcher.Close()
		return err
	}
	<-ctx.Done()
	f.Stop()
	return nil
}

// Printed returns how many times the result has been printed.
func (f *Follower) Printed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printed
}

func (f *Follower) run(ctx context.Context) {
	defer close(f.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopCh:
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				f.mu.Lock()
				f.pending = time.Now()
				f.mu.Unlock()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryResults).Error("Follower error: %v", err)
		case <-ticker.C:
			f.mu.Lock()
			due := !f.pending.IsZero() && time.Since(f.pending) >= f.debounceDur
			if due {
				f.pending = time.Time{}
			}
			f.mu.Unlock()
			if due {
				f.print()
			}
		}
	}
}

func (f *Follower) print() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printLocked()
}

func (f *Follower) printLocked() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		logging.ResultsDebug("Follower: read %s: %v", f.path, err)
		return
	}
	fmt.Fprintf(f.out, "==> %s (%s) <==\n", filepath.Base(f.path), time.Now().Format("15:04:05"))
	f.out.Write(data)
	f.printed++
}
