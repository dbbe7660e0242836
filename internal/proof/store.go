package proof

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/pkg/errors"
)

// Store keeps in-flight proof attempts in memory, keyed by attempt ID.
// Attempts are short-lived per-session scratch state; nothing here survives
// a restart, which matches the mobile flow where an interrupted upload is
// simply retried. Each attempt holds the uploaded image bytes, so abandoned
// attempts expire after the TTL instead of accumulating.
type Store struct {
	mu       sync.Mutex
	attempts map[string]*attemptEntry

	scanner Scanner
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

type attemptEntry struct {
	pipeline  *Pipeline
	createdAt time.Time
}

// NewStore creates an empty attempt store whose entries expire after ttl
func NewStore(scanner Scanner, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		attempts: make(map[string]*attemptEntry),
		scanner:  scanner,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a new idle pipeline and returns its attempt ID
func (s *Store) Create() (string, *Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	p := NewPipeline(s.scanner, s.logger)
	s.attempts[id] = &attemptEntry{pipeline: p, createdAt: s.now()}
	return id, p
}

// Get returns the pipeline for an attempt ID. An expired attempt is treated
// the same as an unknown one.
func (s *Store) Get(id string) (*Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.attempts[id]
	if !exists {
		return nil, &errors.ErrNotFound{Resource: "proof attempt", ID: id}
	}
	if s.expired(entry) {
		entry.pipeline.Reset()
		delete(s.attempts, id)
		return nil, &errors.ErrNotFound{Resource: "proof attempt", ID: id}
	}
	return entry.pipeline, nil
}

// Delete resets and removes an attempt
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.attempts[id]; exists {
		entry.pipeline.Reset()
		delete(s.attempts, id)
	}
}

// RunEvictionLoop sweeps expired attempts at the given interval until the
// context is cancelled. Started once from main.
func (s *Store) RunEvictionLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.attempts {
		if s.expired(entry) {
			entry.pipeline.Reset()
			delete(s.attempts, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted expired proof attempts",
			zap.Int("count", evicted),
			zap.Int("remaining", len(s.attempts)),
		)
	}
}

func (s *Store) expired(entry *attemptEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.createdAt) > s.ttl
}
