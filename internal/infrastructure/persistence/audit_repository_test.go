package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
	"github.com/uxlens/backend/internal/domain/shared"
)

// newMockAuditRepository creates a GormAuditRepository with a mocked SQL connection
func newMockAuditRepository(t *testing.T) (*GormAuditRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormAuditRepository(gormDB), mock, mockDB
}

func storedReportJSON(t *testing.T) string {
	t.Helper()
	report := audit.BuildFallback(audit.StateDegradedL2, catalog.PageTypeLanding, false)
	raw, err := json.Marshal(report)
	require.NoError(t, err)
	return string(raw)
}

func TestGormAuditRepository_Save(t *testing.T) {
	t.Run("inserts a record and assigns missing identity", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditRepository(t)
		defer mockDB.Close()

		rec := &audit.Record{
			PageType:      catalog.PageTypeLanding,
			TargetURL:     "https://example.com",
			Tier:          audit.TierFree,
			State:         audit.StateFull,
			Model:         "gemini-2.0-flash",
			LatencyMs:     1840,
			CorrelationID: "req-123",
			Report:        audit.BuildFallback(audit.StateDegradedL1, catalog.PageTypeLanding, false),
		}

		mock.ExpectExec(`INSERT INTO "audits"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Save(context.Background(), rec)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditRepository(t)
		defer mockDB.Close()

		rec := &audit.Record{
			ID:       uuid.New(),
			PageType: catalog.PageTypeDashboard,
			Tier:     audit.TierFree,
			State:    audit.StateDegradedL3,
			Report:   audit.BuildFallback(audit.StateDegradedL3, catalog.PageTypeDashboard, false),
		}

		mock.ExpectExec(`INSERT INTO "audits"`).
			WillReturnError(sql.ErrConnDone)

		err := repo.Save(context.Background(), rec)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditRepository_FindByID(t *testing.T) {
	t.Run("finds existing audit", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditRepository(t)
		defer mockDB.Close()

		auditID := uuid.New()
		createdAt := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "page_type", "target_url", "image_url", "tier", "state",
			"model_used", "latency_ms", "correlation_id", "report", "created_at",
		}).AddRow(
			auditID, "landing", "https://example.com", "https://cdn.example.com/shot.png",
			"free", "degraded_l2", "gemini-2.0-flash", int64(2100), "req-456",
			storedReportJSON(t), createdAt,
		)

		mock.ExpectQuery(`SELECT \* FROM "audits" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(auditID, 1).
			WillReturnRows(rows)

		rec, err := repo.FindByID(context.Background(), auditID)

		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, auditID, rec.ID)
		assert.Equal(t, catalog.PageTypeLanding, rec.PageType)
		assert.Equal(t, audit.StateDegradedL2, rec.State)
		assert.Equal(t, "req-456", rec.CorrelationID)
		require.NotNil(t, rec.Report)
		assert.NoError(t, rec.Report.Validate(false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing audit", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditRepository(t)
		defer mockDB.Close()

		auditID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "audits" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(auditID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rec, err := repo.FindByID(context.Background(), auditID)

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a corrupted stored report", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditRepository(t)
		defer mockDB.Close()

		auditID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "page_type", "target_url", "image_url", "tier", "state",
			"model_used", "latency_ms", "correlation_id", "report", "created_at",
		}).AddRow(
			auditID, "landing", "", "", "free", "full",
			"gemini-2.0-flash", int64(0), "req-789", "{not json", time.Now().UTC(),
		)

		mock.ExpectQuery(`SELECT \* FROM "audits" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(auditID, 1).
			WillReturnRows(rows)

		rec, err := repo.FindByID(context.Background(), auditID)

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "failed to parse stored report")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
