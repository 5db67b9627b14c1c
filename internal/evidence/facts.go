package evidence

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cssPropRe matches "property-name:" declarations inside style text.
var cssPropRe = regexp.MustCompile(`(?m)(?:^|[;{\s])(-?[a-zA-Z][a-zA-Z-]*)\s*:`)

// atRuleRe matches CSS at-rules such as @media and @keyframes.
var atRuleRe = regexp.MustCompile(`@[a-zA-Z-]+`)

// pseudoRe matches pseudo-class selectors in stylesheet text.
var pseudoRe = regexp.MustCompile(`:(hover|focus|active|visited|before|after)\b`)

// ExtractFacts parses rendered HTML and returns the CSS properties and DOM
// selectors observed in it. It is a pure function of its input, separated
// from Capture so fact extraction is testable without a browser.
func ExtractFacts(html string) *VisualFacts {
	facts := &VisualFacts{
		CSSProperties: make(map[string]bool),
		Selectors:     make(map[string]bool),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Fall back to raw scanning; malformed HTML still carries facts.
		scanStyleText(html, facts)
		return facts
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			if node.Data != "" {
				facts.Selectors[strings.ToLower(node.Data)] = true
			}
		}
		if id, ok := s.Attr("id"); ok && id != "" {
			facts.Selectors["#"+id] = true
		}
		if class, ok := s.Attr("class"); ok {
			for _, c := range strings.Fields(class) {
				facts.Selectors["."+c] = true
			}
		}
		if style, ok := s.Attr("style"); ok {
			scanStyleText(style, facts)
		}
	})

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		scanStyleText(s.Text(), facts)
	})

	return facts
}

// scanStyleText records the property names, at-rules, and pseudo-class
// selectors present in a blob of CSS.
func scanStyleText(css string, facts *VisualFacts) {
	for _, m := range cssPropRe.FindAllStringSubmatch(css, -1) {
		facts.CSSProperties[strings.ToLower(m[1])] = true
	}
	for _, m := range atRuleRe.FindAllString(css, -1) {
		facts.CSSProperties[strings.ToLower(m)] = true
	}
	for _, m := range pseudoRe.FindAllString(css, -1) {
		facts.Selectors[strings.ToLower(m)] = true
	}
}
