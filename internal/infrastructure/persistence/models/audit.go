package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
)

// AuditModel is the persistence model for a completed audit. The report
// body is stored as a single JSONB document; the columns next to it exist
// for lookups and operational queries only.
type AuditModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	PageType      string    `gorm:"type:varchar(20);not null"`
	TargetURL     string    `gorm:"type:text"`
	ImageURL      string    `gorm:"type:text"`
	Tier          string    `gorm:"type:varchar(20);not null;default:'free'"`
	State         string    `gorm:"type:varchar(20);not null"`
	ModelUsed     string    `gorm:"type:varchar(100)"`
	LatencyMs     int64     `gorm:"not null;default:0"`
	CorrelationID string    `gorm:"type:varchar(64);index"`
	ReportJSON    string    `gorm:"column:report;type:jsonb;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditModel) TableName() string {
	return "audits"
}

// AuditModelFromDomain converts a domain record to its persistence model.
func AuditModelFromDomain(rec *audit.Record) (*AuditModel, error) {
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	return &AuditModel{
		ID:            rec.ID,
		PageType:      rec.PageType.String(),
		TargetURL:     rec.TargetURL,
		ImageURL:      rec.ImageURL,
		Tier:          rec.Tier.String(),
		State:         rec.State.String(),
		ModelUsed:     rec.Model,
		LatencyMs:     rec.LatencyMs,
		CorrelationID: rec.CorrelationID,
		ReportJSON:    string(reportJSON),
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// ToDomain converts the persistence model back to a domain record.
func (m *AuditModel) ToDomain() (*audit.Record, error) {
	var report audit.Report
	if err := json.Unmarshal([]byte(m.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return &audit.Record{
		ID:            m.ID,
		PageType:      catalog.PageType(m.PageType),
		TargetURL:     m.TargetURL,
		ImageURL:      m.ImageURL,
		Tier:          audit.AccessTier(m.Tier),
		State:         audit.AnalysisState(m.State),
		Model:         m.ModelUsed,
		LatencyMs:     m.LatencyMs,
		CorrelationID: m.CorrelationID,
		Report:        &report,
		CreatedAt:     m.CreatedAt,
	}, nil
}
