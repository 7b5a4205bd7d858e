// Package watch invalidates cached framework detection when the marker
// file or the configuration directory of a project changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/termfx/hlebhint/internal/framework"
	"github.com/termfx/hlebhint/internal/settings"
)

// Watcher monitors one project root
type Watcher struct {
	watcher  *fsnotify.Watcher
	detector *framework.Detector
	logger   *slog.Logger
	root     string
	marker   string // absolute marker path
	config   string // absolute config directory

	onChange func(path string)

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	events  atomic.Int64
	resets  atomic.Int64
	started atomic.Bool
}

// New creates a watcher for root. Nothing is watched until Start.
func New(root string, detector *framework.Detector, logger *slog.Logger) (*Watcher, error) {
	if root == "" {
		return nil, errors.New("watch: root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", root, err)
	}
	if detector == nil {
		detector = framework.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		detector: detector,
		logger:   logger,
		root:     abs,
		marker:   filepath.Join(abs, detector.Marker()),
		config:   filepath.Join(abs, settings.ConfigDir),
	}, nil
}

// OnChange registers a callback run after every relevant event. It must be
// set before Start.
func (w *Watcher) OnChange(fn func(path string)) {
	w.onChange = fn
}

// Start adds the watches and begins processing events until ctx is
// cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: already started")
	}

	w.addWatch(w.root)
	for _, dir := range w.markerDirs() {
		w.addWatch(dir)
	}
	w.addWatch(w.config)

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.processEvents(ctx)

	w.logger.Debug("watching project", "root", w.root, "marker", w.marker)
	return nil
}

// Close stops the watcher and waits for the event loop to exit
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// Events returns the number of events seen
func (w *Watcher) Events() int64 {
	return w.events.Load()
}

// Resets returns how many times detection was invalidated
func (w *Watcher) Resets() int64 {
	return w.resets.Load()
}

// markerDirs lists the directories between the root and the marker file
func (w *Watcher) markerDirs() []string {
	var dirs []string
	for dir := filepath.Dir(w.marker); dir != w.root && strings.HasPrefix(dir, w.root); dir = filepath.Dir(dir) {
		dirs = append([]string{dir}, dirs...)
	}
	return dirs
}

func (w *Watcher) addWatch(dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("watch failed", "path", dir, "error", err)
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.events.Add(1)
	path := event.Name

	switch {
	case path == w.marker:
		w.invalidate(path)
	case strings.HasPrefix(w.marker, path+string(filepath.Separator)):
		// a directory on the way to the marker appeared or vanished
		if event.Has(fsnotify.Create) {
			w.addWatch(path)
		}
		w.invalidate(path)
	case path == w.config:
		if event.Has(fsnotify.Create) {
			w.addWatch(path)
		}
		w.changed(path)
	case filepath.Dir(path) == w.config:
		w.changed(path)
	}
}

func (w *Watcher) invalidate(path string) {
	w.detector.Reset(w.root)
	w.resets.Add(1)
	w.logger.Debug("framework detection reset", "root", w.root, "path", path)
	w.changed(path)
}

func (w *Watcher) changed(path string) {
	if w.onChange != nil {
		w.onChange(path)
	}
}
