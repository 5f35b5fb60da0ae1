package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a rerun is signalled
const DefaultDebounce = 500 * time.Millisecond

// Watcher signals when the files backing a corpus change. Bursts of events
// are coalesced into one signal after a quiet period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{watcher: w, debounce: debounce, logger: logger}, nil
}

// Watch monitors paths and returns a channel receiving one value per settled
// burst of changes. Files are watched through their parent directory. The
// channel is closed when ctx ends or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, paths ...string) (<-chan struct{}, error) {
	dirs := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", path, err)
		}
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)

		timer := time.NewTimer(w.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !relevant(event) {
					continue
				}
				w.logger.Debug("corpus_file_changed", "path", event.Name, "op", event.Op.String())
				timer.Reset(w.debounce)
			case <-timer.C:
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("corpus_watch_error", "err", err)
			}
		}
	}()

	return changes, nil
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// relevant filters out hidden files, in-flight temporary files and result
// files so that writing output next to the corpus does not retrigger a run.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmp", ".json":
		return false
	}
	return true
}
