package dto

// Response statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response represents a standard API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail carries machine-readable error context alongside the message.
// The hint tells an operator how to remediate; the correlation ID lets them
// find the matching log lines.
type ErrorDetail struct {
	Code          string `json:"code"`
	Hint          string `json:"hint,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// NewErrorResponse creates an error response with a message only
func NewErrorResponse(message string) Response {
	return Response{
		Status:  StatusError,
		Message: message,
	}
}

// NewErrorResponseWithDetail creates an error response carrying an error code,
// its remediation hint, and the request correlation ID
func NewErrorResponseWithDetail(message, code, correlationID string) Response {
	return Response{
		Status:  StatusError,
		Message: message,
		Data: &ErrorDetail{
			Code:          code,
			Hint:          HintFor(code),
			CorrelationID: correlationID,
		},
	}
}
