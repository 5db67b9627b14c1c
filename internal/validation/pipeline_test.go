package validation

import (
	"reflect"
	"testing"

	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/pkg/models"
)

func basicContext() models.Context {
	return models.Context{
		UserRequest: "search the docs and summarize the findings",
		ProjectRoot: "/project",
	}
}

func TestPipeline_InvalidContext(t *testing.T) {
	p := New(DefaultConfig())
	rep, err := p.Validate("a response", models.Context{}, nil)
	if err == nil {
		t.Fatal("expected an error for an empty context")
	}
	if rep != nil {
		t.Error("no report should accompany a context error")
	}
}

func TestPipeline_LayerDeclarationOrder(t *testing.T) {
	p := New(DefaultConfig())
	want := []string{
		LayerTemplateCompliance,
		LayerInstructionAlignment,
		LayerHallucinationDetection,
		LayerRealityAnchor,
		LayerMCPToolGuardian,
		LayerVisualValidator,
	}
	var got []string
	for _, l := range p.Layers() {
		got = append(got, l.Name())
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("layer order = %v, want %v", got, want)
	}
}

func TestPipeline_DisabledLayersOmitted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VisualValidator.Enabled = false
	cfg.RealityAnchor.Enabled = false
	p := New(cfg)
	if len(p.Layers()) != 4 {
		t.Errorf("expected 4 layers, got %d", len(p.Layers()))
	}
}

func TestPipeline_NilBundleTolerated(t *testing.T) {
	p := New(DefaultConfig())
	rep, err := p.Validate("search the docs and summarize the findings, done", basicContext(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Layers) != 6 {
		t.Errorf("expected 6 layer results, got %d", len(rep.Layers))
	}
}

func TestPipeline_UnexecutedToolClaimFails(t *testing.T) {
	p := New(DefaultConfig())
	response := "I'll search for the latest docs and summarize the findings."
	rep, err := p.Validate(response, basicContext(), &evidence.Bundle{FilesAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Passed {
		t.Fatal("unexecuted tool claim should fail the run")
	}
	found := false
	for _, v := range rep.Violations {
		if v.Layer == LayerMCPToolGuardian {
			found = true
			if v.Severity != models.SeverityBlocking {
				t.Errorf("tool guardian violation should be blocking, got %s", v.Severity)
			}
		}
	}
	if !found {
		t.Error("expected a tool guardian violation")
	}
}

func TestPipeline_ExecutedToolClaimPasses(t *testing.T) {
	p := New(DefaultConfig())
	response := "I'll search for the latest docs and summarize the findings."
	bundle := &evidence.Bundle{
		FilesAvailable: true,
		Trace:          []evidence.ToolInvocation{{Tool: "web_search"}},
	}
	rep, err := p.Validate(response, basicContext(), bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Passed {
		t.Errorf("expected a pass, got violations: %+v", rep.Violations)
	}
}

func TestPipeline_HallucinatedImplementationFails(t *testing.T) {
	p := New(DefaultConfig())
	ctx := models.Context{
		UserRequest: "sort users by signup date",
		ProjectRoot: "/project",
	}
	response := "I created a function to sort users by signup date."
	rep, err := p.Validate(response, ctx, &evidence.Bundle{FilesAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Passed {
		t.Fatal("implementation claim without code or file evidence should fail")
	}
	found := false
	for _, v := range rep.Violations {
		if v.Layer == LayerHallucinationDetection {
			found = true
		}
	}
	if !found {
		t.Error("expected a hallucination detection violation")
	}
}

func TestPipeline_WrongTemplateFails(t *testing.T) {
	p := New(DefaultConfig())
	ctx := models.Context{
		UserRequest:  "build the landing page from the template",
		ProjectRoot:  "/project",
		TemplatePath: "template.html",
	}
	response := "Used oldtemplate.html as the base for the landing page, following the template structure."
	bundle := &evidence.Bundle{
		FilesAvailable: true,
		Template:       &evidence.FileFact{Exists: true},
	}
	rep, err := p.Validate(response, ctx, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Passed {
		t.Fatal("mismatched template reference should fail the run")
	}
}

func TestPipeline_MatchingTemplatePasses(t *testing.T) {
	p := New(DefaultConfig())
	ctx := models.Context{
		UserRequest:  "build a hero section from template.html",
		ProjectRoot:  "/project",
		TemplatePath: "template.html",
	}
	response := "Used template.html as the base and added a hero section."
	bundle := &evidence.Bundle{
		FilesAvailable: true,
		Template:       &evidence.FileFact{Exists: true},
	}
	rep, err := p.Validate(response, ctx, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range rep.Violations {
		if v.Layer == LayerTemplateCompliance {
			t.Errorf("unexpected template violation: %+v", v)
		}
	}
}

func TestPipeline_AdvisoryNeverFlipsOutcome(t *testing.T) {
	// Visual layer enabled and failing, but advisory; run must still pass.
	p := New(DefaultConfig())
	ctx := models.Context{
		UserRequest:  "add glassmorphism styling to the card",
		ProjectRoot:  "/project",
		DevServerURL: "http://localhost:3000",
	}
	response := "Added glassmorphism styling to the card."
	bundle := &evidence.Bundle{
		FilesAvailable: true,
		Visual: &evidence.VisualFacts{
			CSSProperties: map[string]bool{"color": true},
			Selectors:     map[string]bool{},
		},
	}
	rep, err := p.Validate(response, ctx, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Passed {
		t.Fatalf("advisory violations must not fail the run, got %+v", rep.Violations)
	}
	if _, advisory := rep.CountBySeverity(); advisory == 0 {
		t.Error("expected at least one advisory violation")
	}
}

func TestPipeline_UnreachableDevServerSkipsVisual(t *testing.T) {
	p := New(DefaultConfig())
	ctx := models.Context{
		UserRequest:  "add glassmorphism styling to the card",
		ProjectRoot:  "/project",
		DevServerURL: "http://localhost:3000",
	}
	response := "Added glassmorphism styling to the card."
	bundle := &evidence.Bundle{FilesAvailable: true, Visual: nil}
	rep, err := p.Validate(response, ctx, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Passed {
		t.Fatalf("expected pass with visual skipped, got %+v", rep.Violations)
	}
	var visual *struct {
		skipped    bool
		violations int
	}
	for _, lr := range rep.Layers {
		if lr.Layer == LayerVisualValidator {
			visual = &struct {
				skipped    bool
				violations int
			}{lr.Skipped, len(lr.Violations)}
		}
	}
	if visual == nil {
		t.Fatal("visual layer result missing from report")
	}
	if !visual.skipped || visual.violations != 0 {
		t.Errorf("expected skipped visual layer with zero violations, got %+v", visual)
	}
}

func TestPipeline_ConfidenceScoringConfigurable(t *testing.T) {
	// The unexecuted tool claim carries the extractor's confidence, so a
	// tuned base must show up on the reported claim.
	cfg := DefaultConfig()
	cfg.Confidence.Base = 0.3
	cfg.Confidence.Step = 0.01
	p := New(cfg)

	response := "I'll search for it and summarize the findings."
	rep, err := p.Validate(response, basicContext(), &evidence.Bundle{FilesAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tuned float64 = -1
	for _, v := range rep.Violations {
		if v.Layer == LayerMCPToolGuardian && v.Claim != nil {
			tuned = v.Claim.Confidence
		}
	}
	if tuned < 0 {
		t.Fatal("expected a tool guardian violation carrying its claim")
	}

	defRep, err := New(DefaultConfig()).Validate(response, basicContext(), &evidence.Bundle{FilesAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range defRep.Violations {
		if v.Layer == LayerMCPToolGuardian && v.Claim != nil && v.Claim.Confidence == tuned {
			t.Errorf("tuned scoring produced the default confidence %f", tuned)
		}
	}
}

func TestPipeline_AdviseMissingToolUse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdviseMissingToolUse = true
	p := New(cfg)

	// Request implies a search, nothing executed, response claims nothing.
	rep, err := p.Validate("The docs summarize the findings as follows.", basicContext(), &evidence.Bundle{FilesAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Passed {
		t.Fatalf("advisory finding must not fail the run, got %+v", rep.Violations)
	}
	found := false
	for _, v := range rep.Violations {
		if v.Layer == LayerMCPToolGuardian && v.Severity == models.SeverityAdvisory {
			found = true
		}
	}
	if !found {
		t.Error("expected an advisory tool guardian violation")
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	p := New(DefaultConfig())
	ctx := basicContext()
	response := "I'll search for the docs. I created a summary of the findings."
	bundle := &evidence.Bundle{FilesAvailable: true}

	first, err := p.Validate(response, ctx, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstJSON, err := first.MarshalIndent()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Validate(response, ctx, bundle)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		againJSON, err := again.MarshalIndent()
		if err != nil {
			t.Fatalf("run %d marshal: %v", i, err)
		}
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("run %d produced a different report", i)
		}
	}
}
