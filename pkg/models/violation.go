package models

// Severity indicates whether a violation can flip the overall outcome.
type Severity string

const (
	// SeverityBlocking violations fail the run when their layer is blocking.
	SeverityBlocking Severity = "blocking"
	// SeverityAdvisory violations are reported but never fail the run.
	SeverityAdvisory Severity = "advisory"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	return s == SeverityBlocking || s == SeverityAdvisory
}

// Violation is one detected mismatch between a claim (or the absence of an
// expected claim) and evidence.
type Violation struct {
	// Layer is the name of the validator that detected the mismatch.
	Layer string `json:"layer"`
	// Severity is blocking or advisory.
	Severity Severity `json:"severity"`
	// Message is the human-readable description of the mismatch.
	Message string `json:"message"`
	// Claim is the offending claim, if the violation concerns one.
	Claim *Claim `json:"claim,omitempty"`
	// SuggestedFix is mechanical remediation text, if one exists.
	SuggestedFix string `json:"suggested_fix,omitempty"`
}
