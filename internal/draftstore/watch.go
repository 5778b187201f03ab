package draftstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Op is the kind of change observed on a draft.
type Op int

const (
	// OpSaved indicates a draft was created or replaced.
	OpSaved Op = iota

	// OpRemoved indicates a draft was deleted.
	OpRemoved
)

func (o Op) String() string {
	switch o {
	case OpSaved:
		return "saved"
	case OpRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Event is a change to one draft of a FileStore.
type Event struct {
	Key       string
	Op        Op
	Timestamp time.Time
}

// Watcher reports draft changes made to a FileStore directory by any process.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	events  chan Event
	stop    chan struct{}
	logger  *zap.Logger
}

// NewWatcher creates a watcher for the origin directory of s.
func NewWatcher(s *FileStore, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	return &Watcher{
		dir:     s.Dir(),
		watcher: w,
		events:  make(chan Event, 16),
		stop:    make(chan struct{}),
		logger:  logger,
	}, nil
}

// Start begins watching in a background goroutine. Call Stop to release resources.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	go w.run(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// Events returns the channel of draft changes. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			out, ok := translate(ev)
			if !ok {
				continue
			}
			select {
			case w.events <- out:
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("draft watcher error", zap.Error(err))
		}
	}
}

// translate maps a filesystem event to a draft event.
// Temp files and chmod-only events are dropped.
func translate(ev fsnotify.Event) (Event, bool) {
	key, ok := keyFromFile(filepath.Base(ev.Name))
	if !ok {
		return Event{}, false
	}
	now := time.Now()
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return Event{Key: key, Op: OpSaved, Timestamp: now}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Key: key, Op: OpRemoved, Timestamp: now}, true
	default:
		return Event{}, false
	}
}
