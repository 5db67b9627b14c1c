package claims

import (
	"sort"
	"strings"

	"github.com/okikut/guardrail/pkg/models"
)

// Confidence-scoring defaults. No canonical values exist; these are the
// fallbacks when the caller leaves Scoring fields unset.
const (
	defaultCueWindow      = 80
	defaultBaseConfidence = 0.5
	defaultCueStep        = 0.1
	defaultMaxCues        = 4
)

// Scoring tunes how match confidence is computed. Zero-valued fields fall
// back to the defaults, so the zero Scoring is usable as-is.
type Scoring struct {
	// CueWindow is the number of bytes inspected on each side of a match
	// when counting corroborating cues.
	CueWindow int
	// Base is the confidence of a match with zero corroborating cues.
	Base float64
	// Step is the confidence added per corroborating cue, up to MaxCues.
	Step float64
	// MaxCues caps how many cues raise the score.
	MaxCues int
}

// DefaultScoring returns the scoring defaults.
func DefaultScoring() Scoring {
	return Scoring{
		CueWindow: defaultCueWindow,
		Base:      defaultBaseConfidence,
		Step:      defaultCueStep,
		MaxCues:   defaultMaxCues,
	}
}

// normalized fills unset or out-of-range fields with defaults.
func (s Scoring) normalized() Scoring {
	if s.CueWindow <= 0 {
		s.CueWindow = defaultCueWindow
	}
	if s.Base <= 0 || s.Base > 1 {
		s.Base = defaultBaseConfidence
	}
	if s.Step <= 0 {
		s.Step = defaultCueStep
	}
	if s.MaxCues <= 0 {
		s.MaxCues = defaultMaxCues
	}
	return s
}

// Extract scans response text with the default scoring. See ExtractScored.
func Extract(response string) []models.Claim {
	return ExtractScored(response, DefaultScoring())
}

// ExtractScored scans response text and returns the normalized claims it
// asserts, ordered by position, scoring confidence with sc. It is a pure
// function: no I/O, total over arbitrary input, and an input with no
// matches yields an empty (non-nil) slice.
func ExtractScored(response string, sc Scoring) []models.Claim {
	sc = sc.normalized()
	candidates := collect(response, sc)

	// Longest span wins among overlapping matches; ties go to the
	// earlier-declared kind, then to the earlier match.
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := span(candidates[i]), span(candidates[j])
		if si != sj {
			return si > sj
		}
		pi, pj := candidates[i].Kind.Precedence(), candidates[j].Kind.Precedence()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Start < candidates[j].Start
	})

	kept := make([]models.Claim, 0, len(candidates))
	for _, c := range candidates {
		if !overlapsAny(c, kept) {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// collect runs every pattern in the bank and returns all raw matches.
func collect(response string, sc Scoring) []models.Claim {
	var out []models.Claim
	for _, p := range bank {
		for _, m := range p.re.FindAllStringSubmatchIndex(response, -1) {
			start, end := m[0], m[1]
			subject := ""
			if p.subjectGroup > 0 && 2*p.subjectGroup+1 < len(m) && m[2*p.subjectGroup] >= 0 {
				subject = response[m[2*p.subjectGroup]:m[2*p.subjectGroup+1]]
			}
			if p.canon != nil {
				subject = p.canon(subject)
			} else {
				subject = strings.ToLower(strings.TrimSpace(subject))
			}
			out = append(out, models.Claim{
				Kind:       p.kind,
				Text:       response[start:end],
				Start:      start,
				End:        end,
				Subject:    subject,
				Confidence: confidence(response, start, end, p.cues, sc),
			})
		}
	}
	return out
}

// confidence scores a match from the number of corroborating cues found in
// a window around it. More cues never lower the score; the result is
// clamped to [0,1].
func confidence(response string, start, end int, cues []string, sc Scoring) float64 {
	lo := start - sc.CueWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + sc.CueWindow
	if hi > len(response) {
		hi = len(response)
	}
	window := strings.ToLower(response[lo:hi])

	found := 0
	for _, cue := range cues {
		if strings.Contains(window, cue) {
			found++
		}
	}
	if found > sc.MaxCues {
		found = sc.MaxCues
	}
	score := sc.Base + sc.Step*float64(found)
	if score > 1 {
		score = 1
	}
	return score
}

func span(c models.Claim) int { return c.End - c.Start }

func overlapsAny(c models.Claim, kept []models.Claim) bool {
	for _, k := range kept {
		if c.Start < k.End && k.Start < c.End {
			return true
		}
	}
	return false
}
