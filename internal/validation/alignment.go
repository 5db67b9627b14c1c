package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// InstructionAlignment catches responses that drift from the literal
// request: it fails when too few of the request's content keywords show up
// in the response (or in its claims).
type InstructionAlignment struct {
	blocking  bool
	threshold float64
}

func (l *InstructionAlignment) Name() string   { return LayerInstructionAlignment }
func (l *InstructionAlignment) Blocking() bool { return l.blocking }

var wordRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_-]{2,}`)

// stopwords filtered out of the request before keyword coverage is
// computed. Small on purpose: over-filtering hides drift.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "please": true, "can": true,
	"could": true, "would": true, "should": true, "you": true, "your": true,
	"make": true, "want": true, "need": true, "use": true, "using": true,
	"add": true, "have": true, "has": true, "are": true, "was": true,
	"will": true, "all": true, "not": true, "but": true, "out": true,
	"some": true, "any": true, "new": true, "like": true, "just": true,
}

func (l *InstructionAlignment) Validate(in Input) report.LayerResult {
	res := newResult(l)

	keywords := contentKeywords(in.Context.UserRequest)
	if len(keywords) == 0 {
		return res
	}

	response := strings.ToLower(in.Response)
	var missing []string
	covered := 0
	for _, kw := range keywords {
		if containsWord(response, kw) || claimsCover(in.Claims, kw) {
			covered++
		} else {
			missing = append(missing, kw)
		}
	}

	coverage := float64(covered) / float64(len(keywords))
	if coverage < l.threshold {
		res.Violations = append(res.Violations, models.Violation{
			Layer:    l.Name(),
			Severity: severityFor(l),
			Message: fmt.Sprintf("response covers %d of %d request keywords (%.0f%%, needs %.0f%%); missing: %s",
				covered, len(keywords), coverage*100, l.threshold*100, strings.Join(missing, ", ")),
			SuggestedFix: "address the missing parts of the request explicitly or explain why they were skipped",
		})
	}

	return finish(&res)
}

// contentKeywords tokenizes a request into unique, stopword-filtered
// keywords, in order of first appearance.
func contentKeywords(request string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(request), -1) {
		if stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// containsWord reports a whole-word, case-insensitive occurrence. The
// haystack must already be lowercased.
func containsWord(haystack, word string) bool {
	for idx := 0; ; {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(haystack[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(haystack) || !isWordByte(haystack[afterIdx])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func claimsCover(cls []models.Claim, keyword string) bool {
	for _, c := range cls {
		if strings.Contains(strings.ToLower(c.Subject), keyword) {
			return true
		}
	}
	return false
}
