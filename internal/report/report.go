// Package report defines the validation report and its terminal rendering.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/okikut/guardrail/pkg/models"
)

// LayerResult is one validator's verdict.
type LayerResult struct {
	// Layer is the layer name, e.g. "mcp_tool_guardian".
	Layer string `json:"layer"`
	// Blocking records whether this layer can fail the run.
	Blocking bool `json:"blocking"`
	// Passed is true when the layer found no violations that can fail it.
	// Purely advisory findings do not clear it to false.
	Passed bool `json:"passed"`
	// Skipped is true when the layer could not run (missing evidence,
	// unset context field) and reported zero violations.
	Skipped bool `json:"skipped,omitempty"`
	// Violations are the mismatches this layer detected, ordered by the
	// offending claim's position in the response.
	Violations []models.Violation `json:"violations,omitempty"`
	// Evidence holds free-form evidence references for the report,
	// e.g. a screenshot path.
	Evidence map[string]string `json:"evidence,omitempty"`
}

// Report is the aggregated outcome of one validation run. It is pure data:
// identical inputs produce identical Reports.
type Report struct {
	// Passed is true iff every blocking layer passed. Advisory layers
	// never flip it.
	Passed bool `json:"passed"`
	// Layers are the per-layer results in declaration order.
	Layers []LayerResult `json:"layers"`
	// Violations flattens every layer's violations, ordered by layer
	// declaration order then claim offset.
	Violations []models.Violation `json:"violations,omitempty"`
}

// MarshalIndent serializes the report as stable, indented JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Unmarshal parses a serialized report.
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// CountBySeverity returns the number of blocking and advisory violations.
func (r *Report) CountBySeverity() (blocking, advisory int) {
	for _, v := range r.Violations {
		if v.Severity == models.SeverityBlocking {
			blocking++
		} else {
			advisory++
		}
	}
	return blocking, advisory
}
