package validation

import (
	"sort"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// Aggregate combines per-layer results into one Report. Deterministic:
// ordering is defined by layer declaration order and claim offsets, never
// by execution order. Overall Passed is the AND of Passed over blocking,
// non-skipped layers; advisory layers contribute violations only.
func Aggregate(results []report.LayerResult) *report.Report {
	passed := true
	var flat []models.Violation

	for i := range results {
		sortViolations(results[i].Violations)
		if results[i].Blocking && !results[i].Skipped && !results[i].Passed {
			passed = false
		}
		flat = append(flat, results[i].Violations...)
	}

	return &report.Report{
		Passed:     passed,
		Layers:     results,
		Violations: flat,
	}
}

// sortViolations orders a layer's violations by the offending claim's
// text-span offset. Violations without a claim sort first, keeping their
// relative order.
func sortViolations(violations []models.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return claimOffset(violations[i]) < claimOffset(violations[j])
	})
}

func claimOffset(v models.Violation) int {
	if v.Claim == nil {
		return -1
	}
	return v.Claim.Start
}
