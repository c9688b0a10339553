package dto

import (
	"time"

	appaudit "github.com/uxlens/backend/internal/application/audit"
	"github.com/uxlens/backend/internal/domain/audit"
)

// AuditFromURLRequest is the body of POST /audits/url
type AuditFromURLRequest struct {
	URL         string `json:"url" binding:"required,url"`
	PageType    string `json:"page_type" binding:"required,oneof=landing dashboard app"`
	Context     string `json:"context" binding:"omitempty,max=500"`
	AccessLevel string `json:"access_level" binding:"omitempty,oneof=free early_access full"`
	UnlockToken string `json:"unlock_token"`
}

// AuditFromImageForm is the multipart form of POST /audits/image. The image
// itself is read from the "image" file part in the handler.
type AuditFromImageForm struct {
	PageType    string `form:"page_type" binding:"required,oneof=landing dashboard app"`
	Context     string `form:"context" binding:"omitempty,max=500"`
	AccessLevel string `form:"access_level" binding:"omitempty,oneof=free early_access full"`
	UnlockToken string `form:"unlock_token"`
}

// AuditResponse is the result shape shared by the audit creation and lookup
// endpoints. Result is always a structurally valid report; degradation shows
// up in its analysis_state. Access partitions the report for the caller's
// tier without mutating the result.
type AuditResponse struct {
	AuditID       string          `json:"audit_id"`
	PageType      string          `json:"page_type"`
	Result        *audit.Report   `json:"result"`
	LockState     audit.LockState `json:"lock_state"`
	Access        audit.View      `json:"access"`
	ImageURL      string          `json:"image_url,omitempty"`
	ModelUsed     string          `json:"model_used"`
	LatencyMs     int64           `json:"latency_ms"`
	CorrelationID string          `json:"correlation_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewAuditResponse builds the response for a freshly run audit
func NewAuditResponse(outcome *appaudit.Outcome) AuditResponse {
	return AuditResponse{
		AuditID:       outcome.AuditID.String(),
		PageType:      outcome.Report.PageType.String(),
		Result:        outcome.Report,
		LockState:     outcome.LockState,
		Access:        outcome.View,
		ImageURL:      outcome.ImageURL,
		ModelUsed:     outcome.Model,
		LatencyMs:     outcome.LatencyMs,
		CorrelationID: outcome.CorrelationID,
		CreatedAt:     outcome.CreatedAt,
	}
}

// NewAuditRecordResponse builds the response for a stored audit, scoped to
// the tier of the caller retrieving it
func NewAuditRecordResponse(rec *audit.Record, tier audit.AccessTier) AuditResponse {
	return AuditResponse{
		AuditID:       rec.ID.String(),
		PageType:      rec.PageType.String(),
		Result:        rec.Report,
		LockState:     audit.LockStateFor(tier),
		Access:        audit.AccessView(rec.Report, tier),
		ImageURL:      rec.ImageURL,
		ModelUsed:     rec.Model,
		LatencyMs:     rec.LatencyMs,
		CorrelationID: rec.CorrelationID,
		CreatedAt:     rec.CreatedAt,
	}
}

// WaitlistJoinRequest is the body of POST /waitlist
type WaitlistJoinRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// WaitlistJoinResponse returns the granted tier and its unlock token
type WaitlistJoinResponse struct {
	Email       string    `json:"email"`
	Tier        string    `json:"tier"`
	UnlockToken string    `json:"unlock_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
