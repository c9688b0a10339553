package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/waitlist"
)

// WaitlistModel is the persistence model for early-access signups.
type WaitlistModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Email     string    `gorm:"type:varchar(320);not null;uniqueIndex"`
	Tier      string    `gorm:"type:varchar(20);not null;default:'early_access'"`
	TokenID   string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WaitlistModel) TableName() string {
	return "waitlist_entries"
}

// WaitlistModelFromDomain converts a domain entry to its persistence model.
func WaitlistModelFromDomain(entry *waitlist.Entry) *WaitlistModel {
	return &WaitlistModel{
		ID:        entry.ID,
		Email:     entry.Email,
		Tier:      entry.Tier.String(),
		TokenID:   entry.TokenID,
		CreatedAt: entry.CreatedAt,
	}
}

// ToDomain converts the persistence model back to a domain entry.
func (m *WaitlistModel) ToDomain() *waitlist.Entry {
	return &waitlist.Entry{
		ID:        m.ID,
		Email:     m.Email,
		Tier:      audit.AccessTier(m.Tier),
		TokenID:   m.TokenID,
		CreatedAt: m.CreatedAt,
	}
}
