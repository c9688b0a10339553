package dto

import "net/http"

// Capture environment error codes. These surface as 503 with a remediation
// hint: the request was well formed but this deployment cannot serve it.
const (
	// CodeWorkerUnset is used when the edge runtime has no capture worker configured
	CodeWorkerUnset = "AUDIT_WORKER_UNSET"
	// CodeWorkerFailed is used when the capture worker did not return a screenshot
	CodeWorkerFailed = "AUDIT_WORKER_FAILED"
	// CodeChromiumUnavailable is used when no local browser binary can be found
	CodeChromiumUnavailable = "CHROMIUM_UNAVAILABLE"
	// CodeChromiumFailed is used when the local browser failed to start or render
	CodeChromiumFailed = "AUDIT_CHROMIUM_FAILED"
)

// General error codes
const (
	// CodeBadRequest is used for malformed or invalid input
	CodeBadRequest = "BAD_REQUEST"
	// CodeNotFound is used when a resource is not found
	CodeNotFound = "NOT_FOUND"
	// CodePayloadTooLarge is used when a request body exceeds the limit
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	// CodeRateLimited is used when the client exceeded the request rate
	CodeRateLimited = "RATE_LIMITED"
	// CodeInternal is used for internal server errors
	CodeInternal = "INTERNAL"
)

// errorCodeHints maps error codes to operator-facing remediation hints
var errorCodeHints = map[string]string{
	CodeWorkerUnset:         "This runtime cannot capture screenshots locally. Configure a capture worker URL.",
	CodeWorkerFailed:        "The capture worker did not return a screenshot. Check the worker logs using the correlation ID.",
	CodeChromiumUnavailable: "No Chromium binary was found on this host. Install Chromium or configure a capture worker.",
	CodeChromiumFailed:      "The local browser could not complete the capture. Check the Chromium installation or configure a capture worker.",
	CodeRateLimited:         "Too many requests from this client. Retry after the current window expires.",
}

// HintFor returns the remediation hint for an error code, or "" when the code
// needs none
func HintFor(code string) string {
	return errorCodeHints[code]
}

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	CodeWorkerUnset:         http.StatusServiceUnavailable,
	CodeWorkerFailed:        http.StatusServiceUnavailable,
	CodeChromiumUnavailable: http.StatusServiceUnavailable,
	CodeChromiumFailed:      http.StatusServiceUnavailable,

	CodeBadRequest:      http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not known.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
