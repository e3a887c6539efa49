package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 500 * time.Millisecond

// RulesWatcher watches the rule file and invokes onChange after each
// settled modification. Editors that replace the file via rename are
// handled by watching the parent directory.
type RulesWatcher struct {
	path     string
	onChange func() error
}

// NewRulesWatcher creates a watcher for path. onChange runs on the
// watcher goroutine; its error is logged, not fatal, so one bad save
// does not kill the daemon.
func NewRulesWatcher(path string, onChange func() error) *RulesWatcher {
	return &RulesWatcher{path: path, onChange: onChange}
}

// Run blocks until the context is cancelled.
func (w *RulesWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Infof("watching rule file %s", w.path)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := w.onChange(); err != nil {
				logger.Errorf("rule reload failed: %v", err)
			} else {
				logger.Infof("rule file reloaded")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("rule watcher: %v", err)
		}
	}
}
