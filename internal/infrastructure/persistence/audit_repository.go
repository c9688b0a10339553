package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/shared"
	"github.com/uxlens/backend/internal/infrastructure/persistence/models"
)

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save stores a completed audit. Records are immutable once written.
func (r *GormAuditRepository) Save(ctx context.Context, rec *audit.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	model, err := models.AuditModelFromDomain(rec)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID loads an audit record by its ID.
func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Record, error) {
	var model models.AuditModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}
