package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/prismicgen/internal/logfields"
)

// FileWatcher reports debounced changes to a set of files. Parent
// directories are watched so that editors replacing files by rename are
// picked up.
type FileWatcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// NewFileWatcher watches paths. Files need not exist yet, their directories do.
func NewFileWatcher(paths []string, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		files:    make(map[string]bool, len(paths)),
		watcher:  w,
		debounce: debounce,
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		fw.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
			continue
		}
		dirs[dir] = true
	}
	if len(dirs) == 0 {
		_ = w.Close()
		return nil, fmt.Errorf("no watchable directories")
	}
	return fw, nil
}

// Run calls onChange with the last changed file once changes settle for the
// debounce period. It returns when ctx is done or the watcher is closed.
func (fw *FileWatcher) Run(ctx context.Context, onChange func(path string)) {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !fw.files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fw.logger.Debug("Watched file changed", logfields.Path(abs), slog.String("op", event.Op.String()))
			pending = abs
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(pending)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
