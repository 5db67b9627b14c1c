package models

// ClaimKind categorizes an assertion of completed work extracted from a
// response. Precedence (used to break ties between overlapping matches)
// follows declaration order.
type ClaimKind string

const (
	// ClaimToolUsage asserts that a tool was (or will be) invoked.
	ClaimToolUsage ClaimKind = "tool_usage"
	// ClaimTemplateUsage asserts that a provided template was followed.
	ClaimTemplateUsage ClaimKind = "template_usage"
	// ClaimStyling asserts a visual/CSS property of the result.
	ClaimStyling ClaimKind = "styling"
	// ClaimImplementation asserts that code or files were produced.
	ClaimImplementation ClaimKind = "implementation"
	// ClaimGenericInstruction asserts that instructions were followed.
	ClaimGenericInstruction ClaimKind = "generic_instruction"
)

// Valid returns true if the kind is a known value.
func (k ClaimKind) Valid() bool {
	switch k {
	case ClaimToolUsage, ClaimTemplateUsage, ClaimStyling, ClaimImplementation, ClaimGenericInstruction:
		return true
	default:
		return false
	}
}

// Precedence returns the tie-break rank for overlapping matches.
// Lower rank wins.
func (k ClaimKind) Precedence() int {
	switch k {
	case ClaimToolUsage:
		return 0
	case ClaimTemplateUsage:
		return 1
	case ClaimStyling:
		return 2
	case ClaimImplementation:
		return 3
	case ClaimGenericInstruction:
		return 4
	default:
		return 5
	}
}

// Claim is a normalized assertion of completed work extracted from response
// text. Claims are immutable once created; a response yields claims ordered
// by their position in the text.
type Claim struct {
	// Kind is the claim category.
	Kind ClaimKind `json:"kind"`
	// Text is the raw matched span of the response.
	Text string `json:"text"`
	// Start is the byte offset of the match in the response.
	Start int `json:"start"`
	// End is the byte offset one past the match in the response.
	End int `json:"end"`
	// Subject is the canonicalized subject of the claim: a tool name,
	// CSS style term, file path, or object phrase.
	Subject string `json:"subject"`
	// Confidence reflects pattern-match strength in [0,1]. More
	// corroborating cues around the match never lower it.
	Confidence float64 `json:"confidence"`
}
