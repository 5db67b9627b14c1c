package validation

import (
	"strings"
	"testing"

	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/pkg/models"
)

func TestRealityAnchor_SkipsWithoutSnapshot(t *testing.T) {
	l := &RealityAnchor{blocking: false}
	res := l.Validate(Input{
		Claims: []models.Claim{
			{Kind: models.ClaimImplementation, Subject: "src/app.ts"},
		},
		Evidence: &evidence.Bundle{FilesAvailable: false},
	})
	if !res.Skipped {
		t.Error("layer should be skipped when the snapshot is unavailable")
	}
	if len(res.Violations) != 0 {
		t.Errorf("skipped layer must report zero violations, got %d", len(res.Violations))
	}
}

func TestRealityAnchor_KnownPathPasses(t *testing.T) {
	l := &RealityAnchor{blocking: false}
	res := l.Validate(Input{
		Claims: []models.Claim{
			{Kind: models.ClaimImplementation, Subject: "src/app.ts"},
		},
		Evidence: snapshotBundle("src/app.ts"),
	})
	if !res.Passed {
		t.Errorf("path present in the snapshot should pass, got %+v", res.Violations)
	}
}

func TestRealityAnchor_UnknownPathAdvises(t *testing.T) {
	l := &RealityAnchor{blocking: false}
	res := l.Validate(Input{
		Claims: []models.Claim{
			{Kind: models.ClaimImplementation, Subject: "src/missing.ts"},
		},
		Evidence: snapshotBundle("src/app.ts"),
	})
	if res.Passed {
		t.Fatal("unknown path should produce a violation")
	}
	if res.Violations[0].Severity != models.SeverityAdvisory {
		t.Errorf("advisory layer should emit advisory violations, got %s", res.Violations[0].Severity)
	}
}

func TestRealityAnchor_SuggestsNearMiss(t *testing.T) {
	l := &RealityAnchor{blocking: false}
	res := l.Validate(Input{
		Claims: []models.Claim{
			{Kind: models.ClaimImplementation, Subject: "src/herro.tsx"},
		},
		Evidence: snapshotBundle("src/hero.tsx"),
	})
	if res.Passed {
		t.Fatal("misspelled path should produce a violation")
	}
	if !strings.Contains(res.Violations[0].SuggestedFix, "hero.tsx") {
		t.Errorf("expected a near-miss suggestion, got %q", res.Violations[0].SuggestedFix)
	}
}

func TestRealityAnchor_DeduplicatesPaths(t *testing.T) {
	l := &RealityAnchor{blocking: false}
	res := l.Validate(Input{
		Claims: []models.Claim{
			{Kind: models.ClaimImplementation, Subject: "src/missing.ts"},
			{Kind: models.ClaimImplementation, Subject: "also touched src/missing.ts again"},
		},
		Evidence: snapshotBundle("src/app.ts"),
	})
	if len(res.Violations) != 1 {
		t.Errorf("same path should be reported once, got %d violations", len(res.Violations))
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"hero.tsx", "herro.tsx", 1},
		{"abc", "", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
