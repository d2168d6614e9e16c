// Package idempotency provides time-bounded payout deduplication for the
// reward service.
//
// # Overview
//
// This package prevents duplicate on-chain payouts when clients retry a
// request carrying the same idempotency key, including retries that arrive
// while the first submission is still in flight.
//
// # How It Works
//
// 1. A deduplication key is derived from the (receiver, idempotency key) pair
// 2. The store atomically checks for a recorded payout or an in-flight claim
// 3. If recorded: the stored signature is returned without a new submission
// 4. If in flight: the caller waits for the owning request to finish
// 5. Otherwise: the caller owns the claim and proceeds to submit
//
// Failed submissions are NOT recorded, keeping the key safely retryable.
// Records expire after a TTL and are swept opportunistically at the start of
// each request rather than on a background timer, so staleness is bounded by
// request arrival rate.
//
// # Implementing Custom Stores
//
// The in-memory store is a best-effort cache whose state is lost on restart.
// Production deployments that need payout history to survive a crash should
// implement Store against a durable, transactional backend (Redis, database)
// and swap it in at construction; the orchestrator holds no in-process memory
// assumptions beyond the interface.
package idempotency
