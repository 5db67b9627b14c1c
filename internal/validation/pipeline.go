package validation

import (
	"fmt"

	"github.com/okikut/guardrail/internal/claims"
	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// Pipeline runs the enabled layers over a response and aggregates their
// verdicts. It holds no mutable state: one Pipeline is safe for concurrent
// validation runs.
type Pipeline struct {
	layers  []Layer
	scoring claims.Scoring
}

// New builds a pipeline from an explicit Config. Layers run in declaration
// order: template compliance, instruction alignment, hallucination
// detection, reality anchor, tool guardian, visual validator.
func New(cfg Config) *Pipeline {
	if cfg.KeywordThreshold <= 0 || cfg.KeywordThreshold > 1 {
		cfg.KeywordThreshold = 0.5
	}
	if cfg.CodeBlockWindow <= 0 {
		cfg.CodeBlockWindow = 1200
	}

	var layers []Layer
	if cfg.TemplateCompliance.Enabled {
		layers = append(layers, &TemplateCompliance{blocking: cfg.TemplateCompliance.Blocking})
	}
	if cfg.InstructionAlignment.Enabled {
		layers = append(layers, &InstructionAlignment{
			blocking:  cfg.InstructionAlignment.Blocking,
			threshold: cfg.KeywordThreshold,
		})
	}
	if cfg.HallucinationDetection.Enabled {
		layers = append(layers, &HallucinationDetection{
			blocking: cfg.HallucinationDetection.Blocking,
			window:   cfg.CodeBlockWindow,
		})
	}
	if cfg.RealityAnchor.Enabled {
		layers = append(layers, &RealityAnchor{blocking: cfg.RealityAnchor.Blocking})
	}
	if cfg.MCPToolGuardian.Enabled {
		layers = append(layers, &MCPToolGuardian{
			blocking:      cfg.MCPToolGuardian.Blocking,
			adviseMissing: cfg.AdviseMissingToolUse,
		})
	}
	if cfg.VisualValidator.Enabled {
		layers = append(layers, &VisualValidator{blocking: cfg.VisualValidator.Blocking})
	}
	return &Pipeline{layers: layers, scoring: cfg.Confidence}
}

// Layers returns the constructed layers in declaration order.
func (p *Pipeline) Layers() []Layer {
	return p.layers
}

// Validate audits a response against the task context and evidence bundle.
// It always returns a complete Report for a valid context; the only error
// is a construction-time one (invalid context), which callers can
// distinguish from validation violations.
func (p *Pipeline) Validate(response string, taskCtx models.Context, bundle *evidence.Bundle) (*report.Report, error) {
	if err := taskCtx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}
	if bundle == nil {
		bundle = &evidence.Bundle{}
	}

	in := Input{
		Response: response,
		Claims:   claims.ExtractScored(response, p.scoring),
		Context:  taskCtx,
		Evidence: bundle,
	}

	results := make([]report.LayerResult, 0, len(p.layers))
	for _, l := range p.layers {
		results = append(results, l.Validate(in))
	}
	return Aggregate(results), nil
}
