// Package validation composes the multi-layer validation pipeline: claim
// extraction, six independent validators, and deterministic aggregation.
package validation

import (
	"github.com/okikut/guardrail/internal/claims"
	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// Layer names, also the keys used in configuration files.
const (
	LayerTemplateCompliance     = "template_compliance"
	LayerInstructionAlignment   = "instruction_alignment"
	LayerHallucinationDetection = "hallucination_detection"
	LayerRealityAnchor          = "reality_anchor"
	LayerMCPToolGuardian        = "mcp_tool_guardian"
	LayerVisualValidator        = "visual_validator"
)

// Input is everything a layer may consult. Layers are pure over it.
type Input struct {
	// Response is the full response text being audited.
	Response string
	// Claims are the extracted claims, ordered by position.
	Claims []models.Claim
	// Context is the declared task context.
	Context models.Context
	// Evidence is the read-only evidence bundle for this run.
	Evidence *evidence.Bundle
}

// Layer is one independent validator. Implementations must be pure given
// their Input, independently callable, and total over arbitrary response
// text: no input may make them panic.
type Layer interface {
	// Name returns the layer name.
	Name() string
	// Blocking reports whether this layer's failure fails the run.
	// It is fixed by configuration, never computed.
	Blocking() bool
	// Validate produces the layer's verdict.
	Validate(in Input) report.LayerResult
}

// LayerPolicy is the per-layer configuration: whether the layer runs and
// whether its failure blocks the run.
type LayerPolicy struct {
	Enabled  bool
	Blocking bool
}

// Config is the explicit pipeline policy passed into construction. Two
// pipelines with different Configs coexist in one process; there is no
// global state.
type Config struct {
	TemplateCompliance     LayerPolicy
	InstructionAlignment   LayerPolicy
	HallucinationDetection LayerPolicy
	RealityAnchor          LayerPolicy
	MCPToolGuardian        LayerPolicy
	VisualValidator        LayerPolicy

	// KeywordThreshold is the fraction of request keywords that must be
	// covered by the response for Instruction Alignment to pass.
	KeywordThreshold float64
	// CodeBlockWindow is how close (in bytes) a code block must be to an
	// implementation claim to corroborate it.
	CodeBlockWindow int
	// Confidence tunes claim-confidence scoring during extraction.
	// Zero-valued fields fall back to the extraction defaults.
	Confidence claims.Scoring
	// AdviseMissingToolUse turns on the tool guardian's advisory check for
	// requests that imply a tool run when no such tool was executed.
	AdviseMissingToolUse bool
}

// DefaultConfig mirrors the default layer policy: the four verification
// layers block, reality anchoring and visual checks advise.
func DefaultConfig() Config {
	return Config{
		TemplateCompliance:     LayerPolicy{Enabled: true, Blocking: true},
		InstructionAlignment:   LayerPolicy{Enabled: true, Blocking: true},
		HallucinationDetection: LayerPolicy{Enabled: true, Blocking: true},
		RealityAnchor:          LayerPolicy{Enabled: true, Blocking: false},
		MCPToolGuardian:        LayerPolicy{Enabled: true, Blocking: true},
		VisualValidator:        LayerPolicy{Enabled: true, Blocking: false},
		KeywordThreshold:       0.5,
		CodeBlockWindow:        1200,
		Confidence:             claims.DefaultScoring(),
	}
}

// newResult seeds a LayerResult for a layer.
func newResult(l Layer) report.LayerResult {
	return report.LayerResult{
		Layer:    l.Name(),
		Blocking: l.Blocking(),
		Passed:   true,
	}
}

// severityFor returns the severity violations of a layer carry.
func severityFor(l Layer) models.Severity {
	if l.Blocking() {
		return models.SeverityBlocking
	}
	return models.SeverityAdvisory
}

// finish sets Passed from the violation list.
func finish(res *report.LayerResult) report.LayerResult {
	res.Passed = len(res.Violations) == 0
	return *res
}
