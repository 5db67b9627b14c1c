package report

import (
	"strings"
	"testing"

	"github.com/okikut/guardrail/pkg/models"
)

func sampleReport() *Report {
	return &Report{
		Passed: false,
		Layers: []LayerResult{
			{Layer: "template_compliance", Blocking: true, Passed: true},
			{
				Layer:    "mcp_tool_guardian",
				Blocking: true,
				Passed:   false,
				Violations: []models.Violation{
					{
						Layer:        "mcp_tool_guardian",
						Severity:     models.SeverityBlocking,
						Message:      "claimed to use the search tool, but no matching tool invocation was executed",
						SuggestedFix: "actually invoke the search tool, or drop the claim from the response",
					},
				},
			},
			{Layer: "visual_validator", Blocking: false, Skipped: true},
		},
		Violations: []models.Violation{
			{
				Layer:    "mcp_tool_guardian",
				Severity: models.SeverityBlocking,
				Message:  "claimed to use the search tool, but no matching tool invocation was executed",
			},
		},
	}
}

func TestReport_MarshalRoundTrip(t *testing.T) {
	data, err := sampleReport().MarshalIndent()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Passed {
		t.Error("Passed flipped in round trip")
	}
	if len(got.Layers) != 3 {
		t.Errorf("expected 3 layers, got %d", len(got.Layers))
	}
	if len(got.Violations) != 1 {
		t.Errorf("expected 1 violation, got %d", len(got.Violations))
	}
	if got.Violations[0].Severity != models.SeverityBlocking {
		t.Errorf("severity lost: %s", got.Violations[0].Severity)
	}
}

func TestReport_CountBySeverity(t *testing.T) {
	r := &Report{
		Violations: []models.Violation{
			{Severity: models.SeverityBlocking},
			{Severity: models.SeverityBlocking},
			{Severity: models.SeverityAdvisory},
		},
	}
	blocking, advisory := r.CountBySeverity()
	if blocking != 2 || advisory != 1 {
		t.Errorf("got %d blocking / %d advisory, want 2/1", blocking, advisory)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("expected an error for malformed data")
	}
}

func TestRender_FailedReport(t *testing.T) {
	out := Render(sampleReport())

	if !strings.Contains(out, "VALIDATION FAILED") {
		t.Error("expected failure banner")
	}
	if !strings.Contains(out, "mcp_tool_guardian") {
		t.Error("expected the failing layer name")
	}
	if !strings.Contains(out, "[blocking]") {
		t.Error("expected the severity tag")
	}
	if !strings.Contains(out, "fix: actually invoke the search tool") {
		t.Error("expected the suggested fix")
	}
	if !strings.Contains(out, "(skipped)") {
		t.Error("expected the skipped layer status")
	}
	if !strings.Contains(out, "blocking violations: 1") {
		t.Error("expected the summary count")
	}
}

func TestRender_PassedReport(t *testing.T) {
	out := Render(&Report{
		Passed: true,
		Layers: []LayerResult{
			{Layer: "template_compliance", Blocking: true, Passed: true},
		},
	})
	if !strings.Contains(out, "VALIDATION PASSED") {
		t.Error("expected pass banner")
	}
	if !strings.Contains(out, "blocking violations: 0") {
		t.Error("expected zero-count summary")
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := sampleReport()
	r.Layers[1].Evidence = map[string]string{
		"screenshot": "/tmp/a.png",
		"capture":    "ok",
	}
	first := Render(r)
	for i := 0; i < 5; i++ {
		if Render(r) != first {
			t.Fatalf("render %d differs", i)
		}
	}
	// Evidence keys render in sorted order.
	if strings.Index(first, "capture:") > strings.Index(first, "screenshot:") {
		t.Error("evidence keys not sorted")
	}
}

func TestRender_MultiLineFix(t *testing.T) {
	r := &Report{
		Layers: []LayerResult{
			{
				Layer:    "visual_validator",
				Blocking: false,
				Passed:   false,
				Violations: []models.Violation{
					{
						Layer:        "visual_validator",
						Severity:     models.SeverityAdvisory,
						Message:      "m",
						SuggestedFix: "backdrop-filter: blur(12px);\nbackground: rgba(255, 255, 255, 0.1);",
					},
				},
			},
		},
	}
	out := Render(r)
	if !strings.Contains(out, "fix: backdrop-filter") {
		t.Error("expected first fix line prefixed")
	}
	if !strings.Contains(out, "background: rgba") {
		t.Error("expected continuation fix line")
	}
}
