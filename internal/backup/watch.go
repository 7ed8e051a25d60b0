// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the pause between the last database event and the
// re-run it triggers. Bear touches the database and its WAL sidecars in
// bursts; the pause folds a burst into one run.
const DefaultDebounce = 2 * time.Second

// Watch runs one backup immediately, then re-runs it whenever Bear touches
// the database at dbPath. A failed run is reported to w and watching
// continues. Watch returns when ctx is canceled.
func Watch(ctx context.Context, dbPath string, debounce time.Duration, w io.Writer, run func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// SQLite swaps files in and out next to the database, so watch its
	// directory and filter, not the file itself.
	dir := filepath.Dir(dbPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	runAndReport := func() {
		if err := run(ctx); err != nil {
			fmt.Fprintf(w, "backup failed: %v\n", err)
		}
	}

	runAndReport()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !concernsDatabase(event.Name, dbPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case <-timer.C:
			runAndReport()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			fmt.Fprintf(w, "watch error: %v\n", err)
		}
	}
}

// concernsDatabase reports whether an event path is the database file or
// one of SQLite's sidecar files beside it.
func concernsDatabase(eventPath, dbPath string) bool {
	base := filepath.Base(eventPath)
	dbBase := filepath.Base(dbPath)
	switch base {
	case dbBase, dbBase + "-wal", dbBase + "-shm", dbBase + "-journal":
		return true
	}
	return false
}
