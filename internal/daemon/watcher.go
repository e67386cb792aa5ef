package daemon

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
)

const defaultQuietWindow = 500 * time.Millisecond

// Watcher reruns a generation when the shell file or any file in a watched
// directory changes. Bursts of events within the quiet window collapse into a
// single trigger.
//
// A watched file inside the output directory may be rewritten by the
// generation itself. Such files are fingerprinted after every generation and
// events on them only count when the content differs from that fingerprint.
type Watcher struct {
	watcher *fsnotify.Watcher
	runner  *Runner
	logger  *slog.Logger
	quiet   time.Duration
	files   map[string]bool // watched through their parent directory
	dirs    map[string]bool
	output  string

	sumsMu sync.Mutex
	sums   map[string][sha256.Size]byte
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithQuietWindow sets the debounce window.
func WithQuietWindow(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithOutputDir names the directory generations write to.
func WithOutputDir(dir string) WatcherOption {
	return func(w *Watcher) { w.output = dir }
}

// NewWatcher watches the given files and directories. Empty paths are ignored.
func NewWatcher(runner *Runner, logger *slog.Logger, files, dirs []string, opts ...WatcherOption) (*Watcher, error) {
	if runner == nil {
		return nil, errors.ValidationError("runner is required").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create file watcher").Build()
	}
	w := &Watcher{
		watcher: fw,
		runner:  runner,
		logger:  logger,
		quiet:   defaultQuietWindow,
		files:   map[string]bool{},
		dirs:    map[string]bool{},
		sums:    map[string][sha256.Size]byte{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.output != "" {
		abs, err := filepath.Abs(w.output)
		if err != nil {
			_ = fw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve path").WithContext("path", w.output).Build()
		}
		w.output = abs
	}

	add := func(dir string) error {
		if err := fw.Add(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "watch directory").
				WithContext("path", dir).
				Build()
		}
		return nil
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve path").WithContext("path", f).Build()
		}
		w.files[abs] = true
		// The parent directory is watched so editors that replace the file by
		// rename are still seen.
		if err := add(filepath.Dir(abs)); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			_ = fw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve path").WithContext("path", d).Build()
		}
		w.dirs[abs] = true
		if err := add(abs); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	w.fingerprint()
	runner.AfterEach(w.fingerprint)
	return w, nil
}

func fileSum(path string) [sha256.Size]byte {
	// #nosec G304 -- watched paths come from trusted configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}
	}
	return sha256.Sum256(data)
}

// generated reports whether path lies inside the output directory.
func (w *Watcher) generated(path string) bool {
	if w.output == "" {
		return false
	}
	rel, err := filepath.Rel(w.output, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fingerprint records the current content of every watched file the
// generation may rewrite.
func (w *Watcher) fingerprint() {
	w.sumsMu.Lock()
	defer w.sumsMu.Unlock()
	for f := range w.files {
		if w.generated(f) {
			w.sums[f] = fileSum(f)
		}
	}
}

// changed reports whether any of names differs from its fingerprint. Names
// without a fingerprint always count as changed.
func (w *Watcher) changed(names map[string]bool) bool {
	w.sumsMu.Lock()
	defer w.sumsMu.Unlock()
	for name := range names {
		sum, ok := w.sums[name]
		if !ok || fileSum(name) != sum {
			return true
		}
	}
	return false
}

// relevant reports whether a change to name should trigger a generation.
func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return w.dirs[filepath.Dir(name)]
}

// Run processes file events until ctx is done. Generations run on a separate
// goroutine so events keep flowing while one is in progress.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var timerC <-chan time.Time
	var lastChange string
	pending := map[string]bool{}

	w.logger.Info("Watching for changes", logfields.Count(len(w.files)+len(w.dirs)))
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 || !w.relevant(ev.Name) {
				continue
			}
			w.logger.Debug("Input change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			lastChange = ev.Name
			pending[ev.Name] = true
			timer.Reset(w.quiet)
			timerC = timer.C
		case <-timerC:
			// Decide once the current generation has finished so its own
			// writes are already fingerprinted.
			if w.runner.Running() {
				timer.Reset(w.quiet)
				continue
			}
			timerC = nil
			names := pending
			pending = map[string]bool{}
			if !w.changed(names) {
				w.logger.Debug("Ignoring rewrite with unchanged content", logfields.Path(lastChange))
				continue
			}
			reason := "change " + filepath.Base(lastChange)
			go w.runner.Trigger(ctx, reason)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}
