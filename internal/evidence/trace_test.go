package evidence

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTrace_BareArray(t *testing.T) {
	path := writeTrace(t, `[{"tool_name": "web_search", "arguments": {"query": "react hooks"}}]`)
	got, err := LoadTrace(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Tool != "web_search" {
		t.Errorf("unexpected trace: %+v", got)
	}
	if got[0].Arguments["query"] != "react hooks" {
		t.Errorf("arguments not preserved: %+v", got[0].Arguments)
	}
}

func TestLoadTrace_WrappedObject(t *testing.T) {
	path := writeTrace(t, `{"run_id": "r1", "invocations": [{"tool_name": "read_file"}]}`)
	got, err := LoadTrace(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Tool != "read_file" {
		t.Errorf("unexpected trace: %+v", got)
	}
}

func TestLoadTrace_WrappedWithoutInvocations(t *testing.T) {
	path := writeTrace(t, `{"run_id": "r1"}`)
	got, err := LoadTrace(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil trace, got %+v", got)
	}
}

func TestLoadTrace_Invalid(t *testing.T) {
	path := writeTrace(t, `not json`)
	if _, err := LoadTrace(path); err == nil {
		t.Error("expected an error for malformed trace data")
	}
}

func TestLoadTrace_MissingFile(t *testing.T) {
	if _, err := LoadTrace(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	if r.RunID() == "" {
		t.Error("expected a run identity")
	}

	r.Record("web_search", map[string]any{"query": "docs"})
	r.Record("read_file", nil)

	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Tool != "web_search" || got[1].Tool != "read_file" {
		t.Errorf("entries out of order: %+v", got)
	}

	// The snapshot is a copy; later records must not leak in.
	r.Record("fetch", nil)
	if len(got) != 2 {
		t.Error("snapshot should be detached from the recorder")
	}
}
