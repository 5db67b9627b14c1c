package history

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(ProjectStorePath(t.TempDir()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func failedReport() *report.Report {
	return &report.Report{
		Passed: false,
		Layers: []report.LayerResult{
			{Layer: "mcp_tool_guardian", Blocking: true, Passed: false},
		},
		Violations: []models.Violation{
			{Layer: "mcp_tool_guardian", Severity: models.SeverityBlocking, Message: "m"},
		},
	}
}

func TestProjectStorePath(t *testing.T) {
	got := ProjectStorePath("/project")
	want := filepath.Join("/project", ".guardrail", "history.db")
	if got != want {
		t.Errorf("ProjectStorePath = %q, want %q", got, want)
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("run-1", failedReport()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get("run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Passed {
		t.Error("Passed flipped through the store")
	}
	if len(got.Violations) != 1 {
		t.Errorf("expected 1 violation, got %d", len(got.Violations))
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get("nope")
	if err == nil {
		t.Fatal("expected an error for an unknown run")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStore_SaveIsIdempotentPerRunID(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("run-1", failedReport()); err != nil {
		t.Fatal(err)
	}
	passing := &report.Report{Passed: true}
	if err := store.Save("run-1", passing); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(entries))
	}
	if !entries[0].Passed {
		t.Error("replacement report should win")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.Save(id, failedReport()); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := store.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit not applied: got %d entries", len(entries))
	}
	if entries[0].RunID != "run-3" {
		t.Errorf("expected newest run first, got %s", entries[0].RunID)
	}
	if entries[0].Violations != 1 {
		t.Errorf("violation count = %d, want 1", entries[0].Violations)
	}
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("old-run", failedReport()); err != nil {
		t.Fatal(err)
	}

	// Nothing is older than a day.
	n, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 pruned, got %d", n)
	}

	// A zero retention window prunes everything already written.
	time.Sleep(5 * time.Millisecond)
	n, err = store.Prune(0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}

	entries, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty store after prune, got %d entries", len(entries))
	}
}
