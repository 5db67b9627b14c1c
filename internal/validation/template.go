package validation

import (
	"fmt"
	"path"
	"strings"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// TemplateCompliance fails when the context declares a template and the
// response either never claims to have used it or claims to have used a
// different one.
type TemplateCompliance struct {
	blocking bool
}

func (l *TemplateCompliance) Name() string   { return LayerTemplateCompliance }
func (l *TemplateCompliance) Blocking() bool { return l.blocking }

func (l *TemplateCompliance) Validate(in Input) report.LayerResult {
	res := newResult(l)

	expected := in.Context.TemplatePath
	if expected == "" {
		// No template declared: this layer can never produce a
		// violation, for any response text.
		return res
	}

	// A declared-but-unreadable template is a malformed context. It is
	// surfaced as a single synthetic violation, not a fatal failure.
	if in.Evidence != nil && in.Evidence.Template != nil && !in.Evidence.Template.Exists {
		res.Violations = append(res.Violations, models.Violation{
			Layer:        l.Name(),
			Severity:     severityFor(l),
			Message:      fmt.Sprintf("declared template %s is not readable", expected),
			SuggestedFix: fmt.Sprintf("check that %s exists and the template path in the task context is correct", expected),
		})
		return finish(&res)
	}

	expectedNorm := normalizeTemplatePath(expected)
	expectedBase := path.Base(expectedNorm)

	referenced := false
	for i := range in.Claims {
		c := in.Claims[i]
		if c.Kind != models.ClaimTemplateUsage {
			continue
		}
		switch {
		case c.Subject == "":
			// Generic "followed the provided template" reference.
			referenced = true
		case templatePathMatches(c.Subject, expectedNorm, expectedBase):
			referenced = true
		default:
			res.Violations = append(res.Violations, models.Violation{
				Layer:        l.Name(),
				Severity:     severityFor(l),
				Message:      fmt.Sprintf("response references template %s but the task declared %s", c.Subject, expected),
				Claim:        &in.Claims[i],
				SuggestedFix: fmt.Sprintf("base the work on %s as requested", expected),
			})
		}
	}

	if !referenced && len(res.Violations) == 0 {
		res.Violations = append(res.Violations, models.Violation{
			Layer:        l.Name(),
			Severity:     severityFor(l),
			Message:      fmt.Sprintf("response does not reference the declared template %s", expected),
			SuggestedFix: fmt.Sprintf("explicitly build on %s and say so in the response", expected),
		})
	}

	return finish(&res)
}

func normalizeTemplatePath(p string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p), `\`, "/"))
}

// templatePathMatches accepts a claimed path equal to the declared one or
// to its base name ("template.html" satisfies "templates/template.html").
func templatePathMatches(claimed, expectedNorm, expectedBase string) bool {
	claimed = normalizeTemplatePath(claimed)
	return claimed == expectedNorm ||
		path.Base(claimed) == expectedBase
}
