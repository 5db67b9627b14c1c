package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// MCPToolGuardian cross-references tool-usage claims against the trace of
// tools actually executed. Matching is a first-come bipartite assignment:
// claims are satisfied in claim order, and one trace entry can satisfy at
// most one claim, so duplicate claims cannot double-count one execution.
type MCPToolGuardian struct {
	blocking bool
	// adviseMissing turns on the request-implication check: a request that
	// asks for a tool-family action with no matching execution in the
	// trace draws an advisory violation. Off by default.
	adviseMissing bool
}

func (l *MCPToolGuardian) Name() string   { return LayerMCPToolGuardian }
func (l *MCPToolGuardian) Blocking() bool { return l.blocking }

func (l *MCPToolGuardian) Validate(in Input) report.LayerResult {
	res := newResult(l)

	var trace []string
	if in.Evidence != nil {
		for _, inv := range in.Evidence.Trace {
			trace = append(trace, inv.Tool)
		}
	}
	used := make([]bool, len(trace))

	for i := range in.Claims {
		c := in.Claims[i]
		if c.Kind != models.ClaimToolUsage || c.Subject == "" {
			continue
		}

		matched := false
		for t, tool := range trace {
			if !used[t] && toolMatches(c.Subject, tool) {
				used[t] = true
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		res.Violations = append(res.Violations, models.Violation{
			Layer:        l.Name(),
			Severity:     severityFor(l),
			Message:      fmt.Sprintf("claimed to use the %s tool, but no matching tool invocation was executed", c.Subject),
			Claim:        &in.Claims[i],
			SuggestedFix: fmt.Sprintf("actually invoke the %s tool, or drop the claim from the response", c.Subject),
		})
	}

	// Findings from the request-implication check are advisory and never
	// fail the layer; only unverified claims do.
	res.Passed = len(res.Violations) == 0
	if l.adviseMissing {
		res.Violations = append(res.Violations, l.missingToolUse(in, trace)...)
	}
	return res
}

// requestToolCues maps request phrases onto the tool family they imply.
var requestToolCues = map[string]string{
	"search":  "search",
	"look up": "search",
	"google":  "search",
	"fetch":   "fetch",
	"browse":  "browse",
	"crawl":   "crawl",
	"grep":    "grep",
}

// missingToolUse reports tool families the request asks for that no trace
// entry covers. Findings are always advisory.
func (l *MCPToolGuardian) missingToolUse(in Input, trace []string) []models.Violation {
	request := strings.ToLower(in.Context.UserRequest)

	phrases := make([]string, 0, len(requestToolCues))
	for phrase := range requestToolCues {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)

	flagged := map[string]bool{}
	var out []models.Violation
	for _, phrase := range phrases {
		family := requestToolCues[phrase]
		if !strings.Contains(request, phrase) || flagged[family] {
			continue
		}
		satisfied := false
		for _, tool := range trace {
			if toolMatches(family, tool) {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		flagged[family] = true
		out = append(out, models.Violation{
			Layer:        l.Name(),
			Severity:     models.SeverityAdvisory,
			Message:      fmt.Sprintf("the request asks for a %s, but no %s tool was executed", phrase, family),
			SuggestedFix: fmt.Sprintf("run a %s tool before answering, or explain why it was not needed", family),
		})
	}

	return out
}

// toolMatches compares a canonicalized claim subject against a trace tool
// name. Besides exact equality, a family match is accepted in both
// directions so "search" satisfies a "web_search" execution.
func toolMatches(subject, tool string) bool {
	s := normTool(subject)
	t := normTool(tool)
	if s == "" || t == "" {
		return false
	}
	return s == t || strings.Contains(t, s) || strings.Contains(s, t)
}

// normTool lowercases and maps separator runs to underscores.
func normTool(name string) string {
	var sb strings.Builder
	lastSep := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				sb.WriteByte('_')
			}
			lastSep = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
