package validation

import (
	"fmt"
	"strings"

	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/pkg/models"
)

// VisualValidator checks styling claims against the CSS and DOM facts
// captured from the rendered page. It only runs when the context names a
// dev server and visual facts are present; otherwise the layer is skipped
// with zero violations, and the run is unaffected.
type VisualValidator struct {
	blocking bool
}

func (l *VisualValidator) Name() string   { return LayerVisualValidator }
func (l *VisualValidator) Blocking() bool { return l.blocking }

// styleFamily maps a canonical styling subject to the facts that prove it
// and a mechanical fix when they are absent.
type styleFamily struct {
	// properties prove the claim when any one is observed.
	properties []string
	// selectors prove the claim when any one is observed.
	selectors []string
	// snippet is the suggested CSS when nothing was observed.
	snippet string
}

var styleFamilies = map[string]styleFamily{
	"glassmorphism": {
		properties: []string{"backdrop-filter", "-webkit-backdrop-filter"},
		snippet:    "backdrop-filter: blur(12px);\nbackground: rgba(255, 255, 255, 0.1);\nborder: 1px solid rgba(255, 255, 255, 0.2);",
	},
	"gradient": {
		properties: []string{"background-image", "background"},
		snippet:    "background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);",
	},
	"shadow": {
		properties: []string{"box-shadow"},
		snippet:    "box-shadow: 0 4px 12px rgba(0, 0, 0, 0.15);",
	},
	"rounded": {
		properties: []string{"border-radius"},
		snippet:    "border-radius: 12px;",
	},
	"animation": {
		properties: []string{"animation", "transition", "@keyframes"},
		snippet:    "transition: all 0.2s ease-in-out;",
	},
	"blur": {
		properties: []string{"backdrop-filter", "filter"},
		snippet:    "filter: blur(8px);",
	},
	"responsive": {
		properties: []string{"@media"},
		snippet:    "@media (max-width: 768px) {\n  /* narrow-viewport layout */\n}",
	},
	"parallax": {
		properties: []string{"background-attachment", "transform"},
		snippet:    "background-attachment: fixed;",
	},
	"hover": {
		selectors: []string{":hover"},
		snippet:   ".button:hover {\n  transform: translateY(-1px);\n}",
	},
	"dark mode": {
		properties: []string{"color-scheme", "@media"},
		snippet:    "@media (prefers-color-scheme: dark) {\n  :root {\n    color-scheme: dark;\n  }\n}",
	},
}

func (l *VisualValidator) Validate(in Input) report.LayerResult {
	res := newResult(l)

	if in.Context.DevServerURL == "" || in.Evidence == nil || in.Evidence.Visual == nil {
		res.Skipped = true
		return res
	}
	visual := in.Evidence.Visual
	if visual.ScreenshotPath != "" {
		res.Evidence = map[string]string{"screenshot": visual.ScreenshotPath}
	}

	for i := range in.Claims {
		c := in.Claims[i]
		if c.Kind != models.ClaimStyling {
			continue
		}
		family, ok := styleFamilies[c.Subject]
		if !ok {
			continue
		}
		if familyObserved(family, visual.CSSProperties, visual.Selectors) {
			continue
		}
		res.Violations = append(res.Violations, models.Violation{
			Layer:        l.Name(),
			Severity:     severityFor(l),
			Message:      fmt.Sprintf("claims %q styling but the rendered page shows none of: %s", c.Subject, familyWants(family)),
			Claim:        &in.Claims[i],
			SuggestedFix: family.snippet,
		})
	}

	return finish(&res)
}

func familyObserved(f styleFamily, props, selectors map[string]bool) bool {
	for _, p := range f.properties {
		if props[p] {
			return true
		}
	}
	for _, s := range f.selectors {
		if selectors[s] {
			return true
		}
	}
	return false
}

func familyWants(f styleFamily) string {
	return strings.Join(append(append([]string{}, f.properties...), f.selectors...), ", ")
}
