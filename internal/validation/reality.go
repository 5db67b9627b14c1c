package validation

import (
	"fmt"
	"strings"

	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// RealityAnchor cross-checks file paths mentioned in claims against the
// project snapshot. Mismatches are reported but never block: the snapshot
// may be stale, or the claim may describe a file yet to be created.
type RealityAnchor struct {
	blocking bool
}

func (l *RealityAnchor) Name() string   { return LayerRealityAnchor }
func (l *RealityAnchor) Blocking() bool { return l.blocking }

func (l *RealityAnchor) Validate(in Input) report.LayerResult {
	res := newResult(l)

	if in.Evidence == nil || !in.Evidence.FilesAvailable {
		res.Skipped = true
		return res
	}

	baseNames := evidence.BaseNames(in.Evidence.Files)
	reported := make(map[string]bool)

	for i := range in.Claims {
		c := in.Claims[i]
		for _, p := range pathTokenRe.FindAllString(c.Subject, -1) {
			p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
			if reported[p] || snapshotHas(in.Evidence, p) {
				continue
			}
			reported[p] = true

			msg := fmt.Sprintf("references %s, which is not in the project snapshot", p)
			fix := ""
			if near := closestName(baseOf(p), baseNames); near != "" {
				fix = fmt.Sprintf("did you mean %s?", near)
			}
			res.Violations = append(res.Violations, models.Violation{
				Layer:        l.Name(),
				Severity:     severityFor(l),
				Message:      msg,
				Claim:        &in.Claims[i],
				SuggestedFix: fix,
			})
		}
	}

	return finish(&res)
}

// snapshotHas accepts a path that matches a snapshot entry exactly, as a
// suffix, or by base name.
func snapshotHas(b *evidence.Bundle, p string) bool {
	for path, fact := range b.Files {
		if !fact.Exists {
			continue
		}
		lp := strings.ToLower(path)
		if lp == p || strings.HasSuffix(lp, "/"+p) || baseOf(lp) == baseOf(p) {
			return true
		}
	}
	return false
}

// closestName returns the snapshot base name nearest to name, or "" when
// nothing is close enough to suggest.
func closestName(name string, candidates []string) string {
	best := ""
	bestDist := 3 // suggest only near misses
	for _, cand := range candidates {
		if d := editDistance(name, strings.ToLower(cand)); d < bestDist {
			best = cand
			bestDist = d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
