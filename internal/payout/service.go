// Package payout implements the reward-payout orchestration: request
// validation, exactly-once-per-key deduplication, and the submission boundary
// around the ledger gateway.
package payout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	solana "github.com/gagliardetto/solana-go"

	"github.com/solstream/rewarder/internal/idempotency"
)

// Gateway is the ledger-facing capability the orchestrator depends on.
// Implementations perform no retries; failures are opaque to the caller and
// surface as gateway errors.
type Gateway interface {
	// RecentBlockhash obtains the freshness token the cluster requires so a
	// submission is not rejected as stale.
	RecentBlockhash(ctx context.Context) (solana.Hash, error)

	// SubmitTransfer signs and submits a single native transfer, returning
	// the transaction signature once the node accepts it.
	SubmitTransfer(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error)
}

// Config holds the orchestrator's payout bounds.
type Config struct {
	DefaultAmountSOL float64
	MaxPayoutSOL     float64
}

// Service processes payout requests end to end. It composes the validator,
// the idempotency store, and the ledger gateway; all collaborators are
// injected at construction and read-only afterwards.
type Service struct {
	gateway Gateway
	store   idempotency.Store
	cfg     Config
	log     *slog.Logger
}

// NewService creates a payout service.
func NewService(gateway Gateway, store idempotency.Store, cfg Config, log *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		cfg:     cfg,
		log:     log,
	}
}

// Result is returned to the boundary for a processed payout. It is never
// stored beyond the response.
type Result struct {
	Signature   string
	Receiver    string
	AmountSOL   float64
	AlreadyPaid bool
}

// SendReward processes one payout request.
//
// Requests without an idempotency key are never deduplicated and pay out
// again if retried. For keyed requests the store is swept, then the key is
// claimed before any ledger interaction:
//
//   - a recorded payout returns the stored signature with AlreadyPaid set,
//     without contacting the ledger again
//   - a key claimed by a concurrent request waits for that request to finish,
//     then fast-paths on its success or takes over the claim on its failure
//   - otherwise this request owns the claim and submits
//
// Failed submissions release the claim without writing a record, so the same
// key stays retryable.
func (s *Service) SendReward(ctx context.Context, req Request) (*Result, error) {
	valid, err := Validate(req, s.cfg.DefaultAmountSOL, s.cfg.MaxPayoutSOL)
	if err != nil {
		return nil, err
	}

	if valid.IdempotencyKey == "" {
		sig, err := s.submit(ctx, valid)
		if err != nil {
			return nil, err
		}
		return s.result(valid, sig, false), nil
	}

	key := idempotency.PayoutKey(req.Receiver, valid.IdempotencyKey)
	s.store.Sweep(time.Now())

	status, record, done := s.store.CheckAndMark(key)
	switch status {
	case idempotency.StatusPaid:
		s.log.Info("payout deduplicated",
			"receiver", valid.Receiver.String(),
			"signature", record.Signature,
		)
		return s.result(valid, record.Signature, true), nil

	case idempotency.StatusInFlight:
		record, err := s.store.WaitForResult(ctx, key, done)
		if err != nil {
			return nil, NewError(ErrCodeGatewayFailure, fmt.Sprintf("Transfer failed: %v", err))
		}
		if record != nil {
			return s.result(valid, record.Signature, true), nil
		}
		// The in-flight attempt failed; claim the key and submit fresh.
		return s.SendReward(ctx, req)

	case idempotency.StatusNotFound:
		// This request owns the claim.
	}

	sig, err := s.submit(ctx, valid)
	if err != nil {
		s.store.Fail(key, done)
		return nil, err
	}
	s.store.Complete(key, sig, done)

	return s.result(valid, sig, false), nil
}

func (s *Service) submit(ctx context.Context, valid *ValidRequest) (string, error) {
	blockhash, err := s.gateway.RecentBlockhash(ctx)
	if err != nil {
		s.log.Error("blockhash fetch failed", "error", err)
		return "", NewError(ErrCodeGatewayFailure, fmt.Sprintf("Transfer failed: %v", err))
	}

	lamports := uint64(math.Round(valid.AmountSOL * float64(solana.LAMPORTS_PER_SOL)))

	sig, err := s.gateway.SubmitTransfer(ctx, valid.Receiver, lamports, blockhash)
	if err != nil {
		s.log.Error("transfer submission failed",
			"receiver", valid.Receiver.String(),
			"lamports", lamports,
			"error", err,
		)
		return "", NewError(ErrCodeGatewayFailure, fmt.Sprintf("Transfer failed: %v", err))
	}

	s.log.Info("transfer submitted",
		"receiver", valid.Receiver.String(),
		"lamports", lamports,
		"signature", sig.String(),
	)
	return sig.String(), nil
}

func (s *Service) result(valid *ValidRequest, signature string, alreadyPaid bool) *Result {
	return &Result{
		Signature:   signature,
		Receiver:    valid.Receiver.String(),
		AmountSOL:   valid.AmountSOL,
		AlreadyPaid: alreadyPaid,
	}
}
