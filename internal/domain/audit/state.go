package audit

// AnalysisState indicates how much of the audit pipeline succeeded before
// fallback content was substituted.
type AnalysisState string

const (
	// StateFull means the model responded and its output passed validation
	StateFull AnalysisState = "full"
	// StateDegradedL1 means the model responded but its output failed validation
	StateDegradedL1 AnalysisState = "degraded_l1"
	// StateDegradedL2 means the model call itself failed (timeout or request error)
	StateDegradedL2 AnalysisState = "degraded_l2"
	// StateDegradedL3 means capture failed or an unclassified error occurred
	StateDegradedL3 AnalysisState = "degraded_l3"
)

// IsValid checks if the AnalysisState is a valid value
func (s AnalysisState) IsValid() bool {
	switch s {
	case StateFull, StateDegradedL1, StateDegradedL2, StateDegradedL3:
		return true
	}
	return false
}

// String returns the string representation of AnalysisState
func (s AnalysisState) String() string {
	return string(s)
}

// Degraded reports whether fallback content was substituted
func (s AnalysisState) Degraded() bool {
	return s != StateFull
}
