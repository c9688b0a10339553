package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
	"github.com/uxlens/backend/internal/domain/shared"
	"github.com/uxlens/backend/internal/domain/waitlist"
)

func TestMemoryAuditRepository(t *testing.T) {
	repo := NewMemoryAuditRepository()
	ctx := context.Background()

	t.Run("save assigns ID when missing", func(t *testing.T) {
		rec := &audit.Record{
			PageType: catalog.PageTypeLanding,
			Tier:     audit.TierFree,
			State:    audit.StateFull,
		}
		err := repo.Save(ctx, rec)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rec.ID)

		found, err := repo.FindByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, found.ID)
	})

	t.Run("find missing record", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestMemoryWaitlistRepository(t *testing.T) {
	repo := NewMemoryWaitlistRepository()
	ctx := context.Background()

	entry, err := waitlist.NewEntry("Ada@Example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, entry))

	t.Run("lookup is case insensitive", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, entry.Email, found.Email)
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		dup, err := waitlist.NewEntry("ada@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, dup))

		found, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, entry.ID, found.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
