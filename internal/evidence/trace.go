package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// traceFile is the on-disk shape exported by assistant harnesses. Both the
// wrapped form {"run_id": ..., "invocations": [...]} and a bare array of
// invocations are accepted.
type traceFile struct {
	RunID       string           `json:"run_id,omitempty"`
	Invocations []ToolInvocation `json:"invocations"`
}

// LoadTrace reads a tool-invocation trace from a JSON file. An empty or
// absent invocation list is valid and means no tools were executed.
func LoadTrace(path string) ([]ToolInvocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}

	var bare []ToolInvocation
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped traceFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse trace file %s: %w", path, err)
	}
	if wrapped.Invocations == nil {
		return []ToolInvocation{}, nil
	}
	return wrapped.Invocations, nil
}

// Recorder accumulates the tool trace for a single run. It is the
// in-process provider used when guardrail is embedded in a harness that
// observes tool execution directly.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	entries []ToolInvocation
}

// NewRecorder creates a Recorder with a fresh run identity.
func NewRecorder() *Recorder {
	return &Recorder{runID: uuid.NewString()}
}

// RunID returns the identity of the run this recorder traces.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record appends one executed tool invocation.
func (r *Recorder) Record(tool string, args map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, ToolInvocation{Tool: tool, Arguments: args})
}

// Snapshot returns a copy of the trace recorded so far, in execution order.
func (r *Recorder) Snapshot() []ToolInvocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ToolInvocation, len(r.entries))
	copy(out, r.entries)
	return out
}
