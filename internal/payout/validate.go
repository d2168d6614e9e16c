package payout

import (
	"math"

	solana "github.com/gagliardetto/solana-go"
)

// Request is the transient input for a single payout. AmountSOL is a pointer
// so that an omitted amount can be told apart from an explicit zero and fall
// back to the configured default.
type Request struct {
	Receiver       string
	AmountSOL      *float64
	IdempotencyKey string
}

// ValidRequest is a Request that passed validation: the receiver parsed as a
// Solana public key and the amount is within bounds.
type ValidRequest struct {
	Receiver       solana.PublicKey
	AmountSOL      float64
	IdempotencyKey string
}

// Validate checks a request's shape and bounds. It is pure and deterministic;
// an absent amount is substituted with defaultAmount before the range check.
func Validate(req Request, defaultAmount, maxPayout float64) (*ValidRequest, error) {
	if req.Receiver == "" {
		return nil, NewError(ErrCodeMissingReceiver, "Missing receiver_wallet_address")
	}

	amount := defaultAmount
	if req.AmountSOL != nil {
		amount = *req.AmountSOL
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, NewError(ErrCodeInvalidAmount, "Invalid amount_sol")
	}
	if amount <= 0 || amount > maxPayout {
		return nil, NewError(ErrCodeAmountOutOfRange, "amount_sol out of allowed range")
	}

	receiver, err := solana.PublicKeyFromBase58(req.Receiver)
	if err != nil {
		return nil, NewError(ErrCodeInvalidReceiver, "Invalid receiver wallet address")
	}

	return &ValidRequest{
		Receiver:       receiver,
		AmountSOL:      amount,
		IdempotencyKey: req.IdempotencyKey,
	}, nil
}
