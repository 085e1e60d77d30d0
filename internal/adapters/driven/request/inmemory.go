// Package request tracks issued authentication-request ids for
// InResponseTo validation.
package request

import (
	"sync"
	"time"

	"github.com/SvHu/svs/internal/core/ports"
)

// InMemoryRequestStore stores pending request ids with their expiry.
// Ids are single-use. Safe for concurrent use.
type InMemoryRequestStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	stopCh  chan struct{}
	closed  bool
}

// NewInMemoryRequestStore creates a store without background cleanup.
// Expired entries are dropped lazily on access.
func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{
		entries: make(map[string]time.Time),
	}
}

// NewInMemoryRequestStoreWithCleanup creates a store that prunes expired ids
// every interval. Call Close to stop the cleanup goroutine.
func NewInMemoryRequestStoreWithCleanup(interval time.Duration) *InMemoryRequestStore {
	s := NewInMemoryRequestStore()
	s.stopCh = make(chan struct{})
	go s.cleanupLoop(interval)
	return s
}

func (s *InMemoryRequestStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryRequestStore) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, id)
		}
	}
}

// Close stops the background cleanup goroutine, if any.
func (s *InMemoryRequestStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil && !s.closed {
		close(s.stopCh)
		s.closed = true
	}
	return nil
}

// Store implements ports.RequestStore.
func (s *InMemoryRequestStore) Store(requestID string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[requestID] = expiry
	return nil
}

// Valid implements ports.RequestStore. A valid id is removed, so the check
// succeeds at most once per id.
func (s *InMemoryRequestStore) Valid(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.entries[requestID]
	if !exists {
		return false
	}
	delete(s.entries, requestID)
	return time.Now().Before(expiry)
}

// GetAll implements ports.RequestStore.
func (s *InMemoryRequestStore) GetAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var ids []string
	for id, expiry := range s.entries {
		if now.Before(expiry) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Ensure the implementation satisfies the port.
var _ ports.RequestStore = (*InMemoryRequestStore)(nil)
