package platform

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"mygrid/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher watches a shader directory and reports when its contents
// change. Editors often write a file in several steps, so changes are
// coalesced until the directory has been quiet for the settle period.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration
	changed chan struct{}
	done    chan struct{}
	events  atomic.Int64
}

// WatchShaders starts watching dir.
func WatchShaders(dir string, settle time.Duration) (*ShaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("shader watcher: watch %s: %w", dir, err)
	}
	sw := &ShaderWatcher{
		watcher: w,
		settle:  settle,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	defer close(sw.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if !relevant(event) {
				continue
			}
			sw.events.Add(1)
			logging.Logger().Debug("shader watcher: change", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(sw.settle)
			} else {
				timer.Reset(sw.settle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case sw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Logger().Warn("shader watcher: error", "err", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Changed delivers one value per settled burst of changes.
func (sw *ShaderWatcher) Changed() <-chan struct{} {
	return sw.changed
}

// Events reports how many relevant file events were seen.
func (sw *ShaderWatcher) Events() int64 {
	return sw.events.Load()
}

// Close stops watching. It is safe to call more than once.
func (sw *ShaderWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}
