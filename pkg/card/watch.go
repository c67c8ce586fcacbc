package card

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/cardgrid/pkg/schedule"
)

// WatchOptions configures [Watch].
type WatchOptions struct {
	// Debounce is the quiet period after the last change before reloading.
	Debounce time.Duration

	// Logger receives reload failures. Nil discards them.
	Logger *log.Logger

	// Scheduler options for the debouncer (clock, dispatch).
	Schedule []schedule.Option
}

// Watch reloads the report at path whenever it changes and passes it to
// onChange. The parent directory is watched so editors that replace the file
// are still seen. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, opts WatchOptions, onChange func(*Report)) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	debounce := schedule.NewDebouncer(opts.Debounce, opts.Schedule...)
	defer debounce.Stop()

	reload := func() {
		report, err := LoadReport(abs)
		if err != nil {
			logger.Warn("reload failed", "path", abs, "error", err)
			return
		}
		logger.Debug("report reloaded", "path", abs, "items", len(report.Items))
		onChange(report)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Schedule(reload)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
