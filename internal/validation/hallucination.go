package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// HallucinationDetection requires every implementation claim to be
// corroborated: a code block near the claim, or a file-system fact
// consistent with the claim's subject. Missing evidence fails
// conservatively; an unavailable snapshot never silently passes.
type HallucinationDetection struct {
	blocking bool
	// window is how far (bytes) from the claim span a code fence still
	// counts as corroboration.
	window int
}

func (l *HallucinationDetection) Name() string   { return LayerHallucinationDetection }
func (l *HallucinationDetection) Blocking() bool { return l.blocking }

var pathTokenRe = regexp.MustCompile(`[\w./\\-]+\.` + `(?:tsx?|jsx?|mjs|cjs|css|scss|html?|go|py|rb|rs|java|json|ya?ml|md|sql|sh|tmpl|tpl)\b`)

func (l *HallucinationDetection) Validate(in Input) report.LayerResult {
	res := newResult(l)

	fences := fenceOffsets(in.Response)
	for i := range in.Claims {
		c := in.Claims[i]
		if c.Kind != models.ClaimImplementation {
			continue
		}
		if fenceNear(fences, c.Start, c.End, l.window) {
			continue
		}
		if fileEvidence(in, c.Subject) {
			continue
		}
		res.Violations = append(res.Violations, models.Violation{
			Layer:        l.Name(),
			Severity:     severityFor(l),
			Message:      fmt.Sprintf("claims to have implemented %q but no supporting code or file change was found", c.Subject),
			Claim:        &in.Claims[i],
			SuggestedFix: "show the implementation in a code block, or reference the file that was actually created or modified",
		})
	}

	return finish(&res)
}

// fenceOffsets returns the byte offsets of ``` fences in the response.
func fenceOffsets(response string) []int {
	var out []int
	for idx := 0; ; {
		i := strings.Index(response[idx:], "```")
		if i < 0 {
			return out
		}
		out = append(out, idx+i)
		idx += i + 3
	}
}

// fenceNear reports whether any code fence falls within window bytes of
// the claim span.
func fenceNear(fences []int, start, end, window int) bool {
	for _, f := range fences {
		if f >= start-window && f <= end+window {
			return true
		}
	}
	return false
}

// fileEvidence checks the snapshot for a file consistent with the claim
// subject: an explicit path mentioned in it, or a file whose base name
// stem appears among the subject's words.
func fileEvidence(in Input, subject string) bool {
	if in.Evidence == nil || !in.Evidence.FilesAvailable {
		return false
	}

	for _, p := range pathTokenRe.FindAllString(subject, -1) {
		p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
		for path, fact := range in.Evidence.Files {
			if !fact.Exists {
				continue
			}
			lp := strings.ToLower(path)
			if lp == p || strings.HasSuffix(lp, "/"+p) || baseOf(lp) == baseOf(p) {
				return true
			}
		}
	}
	return false
}

func baseOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
