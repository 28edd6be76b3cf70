package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/stocktake/internal/logging"
)

// DefaultDebounce is the quiet period after the last filesystem event
// before a rescan fires. Package managers touch their databases many
// times during one transaction; the window lets a whole install settle
// into a single rescan.
const DefaultDebounce = 2 * time.Second

// Rescan is invoked after a settled burst of changes. trigger names the
// source labels whose paths changed, for log and spinner messages. The
// context is cancelled when the watcher stops.
type Rescan func(ctx context.Context, trigger string) error

// Watcher monitors native package database paths and fires a debounced
// rescan when they change.
type Watcher struct {
	paths    []SourcePath
	fsw      *fsnotify.Watcher
	debounce time.Duration
	rescan   Rescan
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer

	running atomic.Bool
}

// New creates a Watcher over the given paths. Every path must exist;
// filter candidates through DefaultSourcePaths first. A debounce of zero
// falls back to DefaultDebounce.
func New(paths []SourcePath, debounce time.Duration, rescan Rescan, logger *slog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no watchable package database paths on this host")
	}
	if rescan == nil {
		return nil, fmt.Errorf("rescan callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	for _, p := range paths {
		if err := fsw.Add(p.Path); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", p.Path, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		paths:    paths,
		fsw:      fsw,
		debounce: debounce,
		rescan:   rescan,
		logger:   logging.Default(logger).With("component", "watcher"),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]bool),
	}, nil
}

// Paths returns the watched locations.
func (w *Watcher) Paths() []SourcePath {
	out := make([]SourcePath, len(w.paths))
	copy(out, w.paths)
	return out
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	w.wg.Add(1)
	go w.loop()

	var watched []string
	for _, p := range w.paths {
		watched = append(watched, p.Path)
	}
	w.logger.Debug("watching", "paths", strings.Join(watched, ", "), "debounce", w.debounce)
	return nil
}

// loop consumes filesystem events until Stop. Each event resets the
// debounce timer; the rescan fires only once the burst settles.
func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			label, matched := matchSource(w.paths, evt.Name)
			if !matched {
				continue
			}
			w.logger.Debug("change detected", "path", evt.Name, "op", evt.Op.String(), "source", label)

			w.mu.Lock()
			w.pending[label] = true
			if w.timer == nil {
				w.timer = time.AfterFunc(w.debounce, w.fire)
			} else {
				w.timer.Reset(w.debounce)
			}
			w.mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// fire drains the pending set and runs the rescan. If a rescan is still
// in progress the timer is rearmed so the pending changes are picked up
// afterwards rather than lost.
func (w *Watcher) fire() {
	if w.ctx.Err() != nil {
		return
	}
	if !w.running.CompareAndSwap(false, true) {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Reset(w.debounce)
		}
		w.mu.Unlock()
		return
	}
	defer w.running.Store(false)

	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	var labels []string
	for label := range w.pending {
		labels = append(labels, label)
	}
	clear(w.pending)
	w.mu.Unlock()

	sort.Strings(labels)
	trigger := strings.Join(labels, ", ")

	w.logger.Info("rescanning", "trigger", trigger)
	if err := w.rescan(w.ctx, trigger); err != nil {
		w.logger.Warn("rescan failed", "trigger", trigger, "error", err)
	}
}

// Stop halts the watcher. In-flight rescans see a cancelled context and
// are expected to abort promptly. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.once.Do(func() {
		w.cancel()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		w.fsw.Close()
		w.wg.Wait()
	})
	return nil
}
