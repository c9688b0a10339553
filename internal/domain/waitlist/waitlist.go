// Package waitlist holds early-access signups and the unlock tier granted
// to each of them.
package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/shared"
)

// Entry is a single signup. TokenID records the unlock token issued at
// signup time so a resend reuses the same identity.
type Entry struct {
	ID        uuid.UUID
	Email     string
	Tier      audit.AccessTier
	TokenID   string
	CreatedAt time.Time
}

// NewEntry validates the email and builds a signup with the early access tier.
func NewEntry(email string) (*Entry, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	return &Entry{
		ID:    uuid.New(),
		Email: email,
		Tier:  audit.TierEarlyAccess,
	}, nil
}

// Repository persists waitlist entries.
type Repository interface {
	Add(ctx context.Context, entry *Entry) error
	FindByEmail(ctx context.Context, email string) (*Entry, error)
}
