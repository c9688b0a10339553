// Package capture obtains PNG renderings of target URLs, either through a
// local headless Chromium or by delegating to a remote capture worker.
package capture

import (
	"context"
	"fmt"
)

// Error codes for capture failures. Callers branch on these, never on the
// message text.
const (
	ErrCodeEdgeRuntimeUnavailable = "EDGE_RUNTIME_UNAVAILABLE"
	ErrCodeAssetsMissing          = "CAPTURE_ASSETS_MISSING"
	ErrCodeBinaryNotFound         = "CAPTURE_BINARY_NOT_FOUND"
	ErrCodeTimeout                = "CAPTURE_TIMEOUT"
	ErrCodeNavigationFailed       = "CAPTURE_NAVIGATION_FAILED"
	ErrCodeWorkerUnset            = "WORKER_UNSET"
	ErrCodeWorkerFailed           = "WORKER_FAILED"
)

// CaptureError is the typed failure every capture path returns. A capture
// never surfaces a raw chromedp or transport error to its caller.
type CaptureError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// EnvironmentFailure reports whether the failure means the local environment
// cannot capture at all, as opposed to a bad target URL or a timeout. Only
// environment failures are eligible for a transparent worker retry.
func (e *CaptureError) EnvironmentFailure() bool {
	switch e.Code {
	case ErrCodeEdgeRuntimeUnavailable, ErrCodeAssetsMissing, ErrCodeBinaryNotFound:
		return true
	}
	return false
}

// NewCaptureError creates a new CaptureError
func NewCaptureError(code, message string, cause error) *CaptureError {
	return &CaptureError{Code: code, Message: message, Cause: cause}
}

// Capturer renders a target URL into image bytes
type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}
