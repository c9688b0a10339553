package analysis

import "fmt"

// The three failure kinds are distinct types so the audit engine can map
// them to different degradation tiers. They are never conflated.

// RequestError means the provider call failed: non-2xx status, transport
// failure, or a response with no candidates at all.
type RequestError struct {
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis request failed with HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "analysis request failed: " + e.Message
}

// Unwrap returns the underlying cause
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the analysis deadline fired before the provider answered
type TimeoutError struct {
	Cause error
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return "analysis timed out"
}

// Unwrap returns the underlying cause
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// OutputError means the provider answered 200 OK but produced no usable text,
// for example when the safety filter blocked the generation.
type OutputError struct {
	Message string
}

// Error implements the error interface
func (e *OutputError) Error() string {
	return "analysis produced no usable output: " + e.Message
}
