// Package claims extracts typed work claims from assistant response text.
package claims

import (
	"regexp"
	"strings"

	"github.com/okikut/guardrail/pkg/models"
)

// claimPattern is one lexical rule in the extraction bank. Patterns are
// evaluated in declaration order; when matches overlap, the longest span
// wins and ties go to the earlier-declared kind.
type claimPattern struct {
	// kind is the claim kind this pattern produces.
	kind models.ClaimKind
	// re is the match expression. subjectGroup selects the capture group
	// used as the claim subject (0 means the whole match).
	re           *regexp.Regexp
	subjectGroup int
	// canon normalizes the captured subject. Nil means lowercase+trim.
	canon func(string) string
	// cues are corroborating words counted in a window around the match
	// to raise confidence.
	cues []string
}

// pathExt matches file extensions the extractor treats as path-like.
const pathExt = `(?:tsx?|jsx?|mjs|cjs|css|scss|html?|go|py|rb|rs|java|json|ya?ml|md|sql|sh|tmpl|tpl)`

// toolVerbs are intent verbs that themselves name a tool family when no
// explicit tool name follows ("I'll search for ..." claims a search tool).
var toolVerbs = map[string]string{
	"search": "search",
	"fetch":  "fetch",
	"browse": "browse",
	"crawl":  "crawl",
	"grep":   "grep",
}

var bank = []claimPattern{
	// Tool usage: explicit tool name after an intent verb.
	{
		kind:         models.ClaimToolUsage,
		re:           regexp.MustCompile(`(?i)\b(?:i'?ll|i will|i am going to|let me)\s+(?:use|run|execute|call|invoke)\s+(?:the\s+)?([A-Za-z_][\w-]*)`),
		subjectGroup: 1,
		cues:         []string{"tool", "mcp", "server", "api", "invoke", "execute"},
	},
	{
		kind:         models.ClaimToolUsage,
		re:           regexp.MustCompile(`(?i)\b(?:using|running|executing|invoking)\s+(?:the\s+)?([A-Za-z_][\w-]*)\s+(?:tool|mcp|server)\b`),
		subjectGroup: 1,
		cues:         []string{"tool", "mcp", "server", "api", "invoke", "execute"},
	},
	// Tool usage: bare intent verb naming a tool family.
	{
		kind:         models.ClaimToolUsage,
		re:           regexp.MustCompile(`(?i)\b(?:i'?ll|i will|i am going to|let me)\s+(search|fetch|browse|crawl|grep)\b`),
		subjectGroup: 1,
		canon:        canonToolVerb,
		cues:         []string{"tool", "web", "docs", "latest", "current"},
	},
	// Template usage: explicit template file reference.
	{
		kind:         models.ClaimTemplateUsage,
		re:           regexp.MustCompile(`(?i)\b(?:used|using|followed|based\s+on|started\s+from|adapted|extended)\s+(?:the\s+)?([\w./\\-]+\.(?:html?|tmpl|tpl|md|tsx?|jsx?|svelte|vue))\b`),
		subjectGroup: 1,
		canon:        canonPath,
		cues:         []string{"template", "base", "layout", "provided", "example", "structure"},
	},
	// Template usage: generic reference to the provided template.
	{
		kind: models.ClaimTemplateUsage,
		re:   regexp.MustCompile(`(?i)\b(?:followed|used|using|based\s+on|kept|matching)\s+(?:the|your|the\s+provided)\s+(?:template|provided\s+example|example\s+layout)\b`),
		cues: []string{"template", "base", "layout", "provided", "example", "structure"},
	},
	// Styling: visual vocabulary.
	{
		kind:         models.ClaimStyling,
		re:           regexp.MustCompile(`(?i)\b(glassmorphism|glassmorphic|frosted\s+glass|gradient|drop\s*shadow|box\s*shadow|rounded\s+corners?|border\s+radius|responsive|animations?|animated|blur(?:red|ry)?|parallax|hover\s+effects?|dark\s+mode)\b`),
		subjectGroup: 1,
		canon:        canonStyle,
		cues:         []string{"css", "style", "styling", "design", "ui", "look", "beautiful", "modern", "sleek"},
	},
	// Implementation: first-person completion verbs with an object phrase.
	{
		kind:         models.ClaimImplementation,
		re:           regexp.MustCompile(`(?i)\bi(?:'ve|\s+have|\s+just)?\s+(?:created|implemented|added|built|wrote|made|developed|refactored|set\s+up)\s+((?:a|an|the)\s+)?([^.!?\n]{3,100})`),
		subjectGroup: 2,
		canon:        canonPhrase,
		cues:         []string{"function", "file", "component", "code", "class", "module", "test", "endpoint"},
	},
	// Implementation: file modification claims.
	{
		kind:         models.ClaimImplementation,
		re:           regexp.MustCompile(`(?i)\b(?:updated|modified|changed|edited|rewrote)\s+([\w./\\-]+\.` + pathExt + `)\b`),
		subjectGroup: 1,
		canon:        canonPath,
		cues:         []string{"file", "code", "change", "diff", "line"},
	},
	// Generic instruction compliance.
	{
		kind: models.ClaimGenericInstruction,
		re:   regexp.MustCompile(`(?i)\b(?:as\s+(?:you\s+)?requested|as\s+specified|as\s+instructed|per\s+your\s+instructions?|exactly\s+as\s+described|following\s+your\s+request)\b`),
		cues: []string{"request", "instruction", "asked", "specified"},
	},
}

// canonToolVerb maps a bare intent verb onto its tool family name.
func canonToolVerb(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if name, ok := toolVerbs[v]; ok {
		return name
	}
	return v
}

// canonPath normalizes path separators and case.
func canonPath(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), `\`, "/"))
}

// canonStyle collapses whitespace and maps synonyms onto one family key.
func canonStyle(s string) string {
	v := strings.ToLower(strings.Join(strings.Fields(s), " "))
	switch v {
	case "glassmorphic", "frosted glass":
		return "glassmorphism"
	case "dropshadow", "drop shadow", "boxshadow", "box shadow":
		return "shadow"
	case "rounded corner", "rounded corners", "border radius":
		return "rounded"
	case "animations", "animation", "animated":
		return "animation"
	case "blurred", "blurry", "blur":
		return "blur"
	case "hover effect", "hover effects":
		return "hover"
	}
	return v
}

// canonPhrase trims an object phrase down to its content words.
func canonPhrase(s string) string {
	v := strings.TrimSpace(strings.ToLower(s))
	v = strings.TrimRight(v, " .,:;")
	// Drop trailing conjunction clauses so "a function to sort users and
	// wired it up" keeps just the claimed artifact.
	if i := strings.Index(v, " and then "); i > 0 {
		v = v[:i]
	}
	return v
}
