package persistence

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/shared"
	"github.com/uxlens/backend/internal/domain/waitlist"
)

// MemoryAuditRepository keeps audits in process memory. Used when no
// database is configured (local development, demos); everything is lost on
// restart.
type MemoryAuditRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*audit.Record
}

// NewMemoryAuditRepository creates an in-memory audit repository
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{
		records: make(map[uuid.UUID]*audit.Record),
	}
}

// Save stores an audit record
func (r *MemoryAuditRepository) Save(ctx context.Context, rec *audit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.records[rec.ID] = rec
	return nil
}

// FindByID retrieves an audit record by its ID
func (r *MemoryAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

// MemoryWaitlistRepository keeps waitlist entries in process memory
type MemoryWaitlistRepository struct {
	mu      sync.RWMutex
	entries map[string]*waitlist.Entry
}

// NewMemoryWaitlistRepository creates an in-memory waitlist repository
func NewMemoryWaitlistRepository() *MemoryWaitlistRepository {
	return &MemoryWaitlistRepository{
		entries: make(map[string]*waitlist.Entry),
	}
}

// Add stores a waitlist entry. Duplicate emails are a no-op, matching the
// database repository's conflict behavior.
func (r *MemoryWaitlistRepository) Add(ctx context.Context, entry *waitlist.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(entry.Email))
	if _, exists := r.entries[key]; exists {
		return nil
	}
	r.entries[key] = entry
	return nil
}

// FindByEmail retrieves a waitlist entry by email
func (r *MemoryWaitlistRepository) FindByEmail(ctx context.Context, email string) (*waitlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}
