package cache

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count    int64
	resetsAt time.Time
}

// InMemoryRateLimitStore implements RateLimitStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryRateLimitStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRateLimitStore creates a new in-memory rate-limit store.
// It starts a background goroutine to clean up expired windows.
func NewInMemoryRateLimitStore() *InMemoryRateLimitStore {
	store := &InMemoryRateLimitStore{
		windows:  make(map[string]*window),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Incr increments the counter for key, opening a new fixed window when
// the previous one has elapsed.
func (s *InMemoryRateLimitStore) Incr(ctx context.Context, key string, windowSize time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, exists := s.windows[key]
	if !exists || now.After(w.resetsAt) {
		w = &window{resetsAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++

	return w.count, nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryRateLimitStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired windows
func (s *InMemoryRateLimitStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryRateLimitStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, w := range s.windows {
		if now.After(w.resetsAt) {
			delete(s.windows, key)
		}
	}
}

// Ensure InMemoryRateLimitStore implements RateLimitStore
var _ RateLimitStore = (*InMemoryRateLimitStore)(nil)
