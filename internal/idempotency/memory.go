package idempotency

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore provides an in-memory implementation of Store.
//
// This implementation is suitable for single-instance deployments where
// payout records don't need to survive a restart or be shared across
// processes. For durability guarantees, implement Store with a transactional
// backend.
//
// Features:
//   - Thread-safe with mutex protection
//   - Configurable TTL for recorded payouts
//   - In-flight claim tracking with wait channels
type InMemoryStore struct {
	mu       sync.Mutex
	records  map[string]Record
	inFlight map[string]chan struct{}
	ttl      time.Duration
}

// NewInMemoryStore creates a new in-memory payout store with the specified TTL.
//
// The TTL determines how long recorded payouts keep deduplicating retries.
// The reference window is 7 days, matching how long a caller might plausibly
// replay the same logical event.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		records:  make(map[string]Record),
		inFlight: make(map[string]chan struct{}),
		ttl:      ttl,
	}
}

// CheckAndMark atomically checks the store and claims the key if needed.
func (s *InMemoryStore) CheckAndMark(key string) (Status, *Record, chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for a recorded payout first
	if record, exists := s.records[key]; exists {
		if time.Since(record.RecordedAt) <= s.ttl {
			out := record
			return StatusPaid, &out, nil
		}
		// Expired - clean it up
		delete(s.records, key)
	}

	// Check for an in-flight claim
	if done, exists := s.inFlight[key]; exists {
		return StatusInFlight, nil, done
	}

	// Claim the key
	done := make(chan struct{})
	s.inFlight[key] = done
	return StatusNotFound, nil, done
}

// WaitForResult waits for an in-flight payout to complete, respecting context
// cancellation.
func (s *InMemoryStore) WaitForResult(ctx context.Context, key string, done chan struct{}) (*Record, error) {
	select {
	case <-done:
		// In-flight payout finished, check for a record
		return s.get(key), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// get retrieves a record if it exists and hasn't expired. Returns a copy so
// callers never alias store-owned state.
func (s *InMemoryStore) get(key string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[key]
	if !exists {
		return nil
	}
	if time.Since(record.RecordedAt) > s.ttl {
		delete(s.records, key)
		return nil
	}

	out := record
	return &out
}

// Complete records a payout, releases the claim, and signals any waiting
// goroutines.
func (s *InMemoryStore) Complete(key string, signature string, done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = Record{
		Key:        key,
		Signature:  signature,
		RecordedAt: time.Now(),
	}

	delete(s.inFlight, key)

	// Signal waiters
	close(done)
}

// Fail releases the claim without recording a payout, allowing the key to be
// retried.
func (s *InMemoryStore) Fail(key string, done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, key)

	// Signal waiters (they'll retry since nothing was recorded)
	close(done)
}

// Sweep removes all records older than the TTL as of now.
func (s *InMemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, record := range s.records {
		if now.Sub(record.RecordedAt) > s.ttl {
			delete(s.records, key)
		}
	}
}

// Ensure InMemoryStore implements Store
var _ Store = (*InMemoryStore)(nil)
