package waitlist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxlens/backend/internal/domain/audit"
)

func TestNewEntry(t *testing.T) {
	t.Run("normalizes email and grants early access", func(t *testing.T) {
		entry, err := NewEntry("  Founder@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "founder@example.com", entry.Email)
		assert.Equal(t, audit.TierEarlyAccess, entry.Tier)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"missing at sign", "not-an-email"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.email)
			require.Error(t, err)
		})
	}
}
