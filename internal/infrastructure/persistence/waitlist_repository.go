package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uxlens/backend/internal/domain/shared"
	"github.com/uxlens/backend/internal/domain/waitlist"
	"github.com/uxlens/backend/internal/infrastructure/persistence/models"
)

// Ensure GormWaitlistRepository implements waitlist.Repository
var _ waitlist.Repository = (*GormWaitlistRepository)(nil)

// GormWaitlistRepository implements waitlist.Repository using GORM
type GormWaitlistRepository struct {
	db *gorm.DB
}

// NewGormWaitlistRepository creates a new GormWaitlistRepository
func NewGormWaitlistRepository(db *gorm.DB) *GormWaitlistRepository {
	return &GormWaitlistRepository{db: db}
}

// Add stores a signup. A repeated signup for the same email is not an
// error; the existing entry wins.
func (r *GormWaitlistRepository) Add(ctx context.Context, entry *waitlist.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	model := models.WaitlistModelFromDomain(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(model).Error
}

// FindByEmail loads a signup by email (case-insensitive).
func (r *GormWaitlistRepository) FindByEmail(ctx context.Context, email string) (*waitlist.Entry, error) {
	var model models.WaitlistModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
