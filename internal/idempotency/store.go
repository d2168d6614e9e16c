package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status represents the result of checking the store.
type Status int

const (
	// StatusNotFound means no recorded payout and no in-flight claim; the
	// caller now owns the claim and should proceed.
	StatusNotFound Status = iota
	// StatusPaid means a recorded payout was found.
	StatusPaid
	// StatusInFlight means another request is currently paying out this key.
	StatusInFlight
)

// Record is one observed payout for a deduplication key. Records are created
// the instant the gateway accepts a submission and are never mutated.
type Record struct {
	Key        string
	Signature  string
	RecordedAt time.Time
}

// Store defines the interface for payout idempotency storage.
// Implementations must be safe for concurrent use.
//
// The interface is designed to support both in-memory and durable backends
// (Redis, database, etc.) for different deployment scenarios.
type Store interface {
	// CheckAndMark atomically checks the store and claims the key if needed.
	//
	// Returns:
	//   - StatusPaid + record + nil: a payout was recorded, return it immediately
	//   - StatusInFlight + nil + done: another request owns the claim, wait on done
	//   - StatusNotFound + nil + done: this request owns the claim and should proceed
	//
	// The done channel signals completion to waiting goroutines. It must be
	// passed to Complete() or Fail() when the submission finishes.
	CheckAndMark(key string) (Status, *Record, chan struct{})

	// WaitForResult waits for an in-flight payout to complete, respecting
	// context cancellation.
	//
	// Returns:
	//   - The record if the in-flight payout succeeded
	//   - nil if it failed (caller should retry)
	//   - Error if the context was cancelled
	WaitForResult(ctx context.Context, key string, done chan struct{}) (*Record, error)

	// Complete records a payout, releases the claim, and signals any waiting
	// goroutines via the done channel.
	//
	// The done channel must be the same one returned by CheckAndMark.
	Complete(key string, signature string, done chan struct{})

	// Fail releases the claim without recording a payout, signaling waiters
	// that they should retry.
	//
	// The done channel must be the same one returned by CheckAndMark.
	Fail(key string, done chan struct{})

	// Sweep removes all records older than the TTL as of now.
	Sweep(now time.Time)
}

// PayoutKey derives the deduplication key for a (receiver, idempotency key)
// pair. The receiver scopes the key, so the same caller-supplied key paid to
// two different wallets counts as two payouts.
func PayoutKey(receiver, idempotencyKey string) string {
	hash := sha256.Sum256([]byte(receiver + "\n" + idempotencyKey))
	return hex.EncodeToString(hash[:])
}
