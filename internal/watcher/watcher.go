// Package watcher monitors a directory for newly written response files so
// watch mode can validate them as they appear.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce suppresses duplicate events for the same path; editors often
// emit several writes per save.
const debounce = 500 * time.Millisecond

// responseExts are the file extensions treated as response files.
var responseExts = map[string]bool{
	".md":  true,
	".txt": true,
}

// Event signals that a response file was created or rewritten.
type Event struct {
	// Path is the absolute path of the response file.
	Path string
}

// Watcher emits an Event for each response file written under a directory.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan Event
	done   chan struct{}

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// New starts watching dir for response file writes.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:      fsw,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	go w.loop()
	return w, nil
}

// Events returns the channel of response-file events. It is closed when
// the watcher shuts down.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !responseExts[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			if !w.shouldEmit(ev.Name) {
				continue
			}
			select {
			case w.events <- Event{Path: ev.Name}:
			case <-w.done:
				return
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep watching.
		}
	}
}

// shouldEmit applies the per-path debounce.
func (w *Watcher) shouldEmit(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < debounce {
		return false
	}
	w.lastSeen[path] = now
	return true
}
