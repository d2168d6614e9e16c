package payout

import (
	"context"
	"sync"

	solana "github.com/gagliardetto/solana-go"
)

// mockGateway counts submissions and hands out sequential signatures.
// Override the Fn fields to inject failures.
type mockGateway struct {
	mu          sync.Mutex
	blockhashes int
	submissions int

	RecentBlockhashFn func(ctx context.Context) (solana.Hash, error)
	SubmitTransferFn  func(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error)
}

func (m *mockGateway) RecentBlockhash(ctx context.Context) (solana.Hash, error) {
	m.mu.Lock()
	m.blockhashes++
	m.mu.Unlock()
	if m.RecentBlockhashFn != nil {
		return m.RecentBlockhashFn(ctx)
	}
	var hash solana.Hash
	hash[0] = 1
	return hash, nil
}

func (m *mockGateway) SubmitTransfer(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
	m.mu.Lock()
	m.submissions++
	n := m.submissions
	m.mu.Unlock()
	if m.SubmitTransferFn != nil {
		return m.SubmitTransferFn(ctx, to, lamports, blockhash)
	}
	var sig solana.Signature
	sig[0] = byte(n)
	return sig, nil
}

func (m *mockGateway) submissionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions
}
