package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/catalog"
)

// Record is a completed audit as stored and later retrieved by ID.
// TargetURL is empty for uploaded-image audits; ImageURL points at the
// stored screenshot when one was captured or uploaded.
type Record struct {
	ID            uuid.UUID
	PageType      catalog.PageType
	TargetURL     string
	ImageURL      string
	Tier          AccessTier
	State         AnalysisState
	Model         string
	LatencyMs     int64
	CorrelationID string
	Report        *Report
	CreatedAt     time.Time
}

// Repository persists audit records.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
}
