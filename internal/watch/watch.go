// Package watch reports changes to a set of files.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet period after the last write to a file before its
// change is reported. Editors commonly emit several writes per save.
const debounce = 100 * time.Millisecond

// Watcher delivers the path of each changed file on Events. Directories are
// watched rather than files so that editors replacing a file by rename are
// still seen.
type Watcher struct {
	Events chan string
	Errors chan error

	watcher *fsnotify.Watcher
	files   map[string]bool
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches the given files.
func New(files ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	watcher := &Watcher{
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		watcher: w,
		files:   watched,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]time.Time)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			pending[name] = time.Now()
			timer.Reset(debounce)
		case <-timer.C:
			now := time.Now()
			for name, last := range pending {
				if wait := debounce - now.Sub(last); wait > 0 {
					timer.Reset(wait)
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
