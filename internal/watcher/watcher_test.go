package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		if !ok {
			t.Fatal("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestWatcher_EmitsOnResponseFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "response.md")
	if err := os.WriteFile(path, []byte("I created a thing."), 0644); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, w)
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event for %s", ev.Path)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "response.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("draft"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitForEvent(t, w)
	select {
	case ev := <-w.Events():
		t.Errorf("burst of writes should emit once, got extra event for %s", ev.Path)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcher_CloseStopsEvents(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("expected closed channel, got an event")
		}
	case <-time.After(time.Second):
		t.Error("event channel not closed after Close")
	}
}

func TestShouldEmit(t *testing.T) {
	w := &Watcher{lastSeen: make(map[string]time.Time)}
	if !w.shouldEmit("/a.md") {
		t.Error("first sighting should emit")
	}
	if w.shouldEmit("/a.md") {
		t.Error("immediate repeat should be debounced")
	}
	if !w.shouldEmit("/b.md") {
		t.Error("debounce is per path")
	}
}
