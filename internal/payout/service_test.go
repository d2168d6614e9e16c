package payout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstream/rewarder/internal/idempotency"
)

func newTestService(gateway Gateway, ttl time.Duration) *Service {
	return NewService(gateway, idempotency.NewInMemoryStore(ttl), Config{
		DefaultAmountSOL: testDefaultAmount,
		MaxPayoutSOL:     testMaxPayout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_SendReward_Success(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, time.Hour)
	receiver := testReceiver()

	result, err := service.SendReward(context.Background(), Request{
		Receiver:  receiver,
		AmountSOL: floatPtr(0.02),
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyPaid)
	assert.NotEmpty(t, result.Signature)
	assert.Equal(t, receiver, result.Receiver)
	assert.Equal(t, 0.02, result.AmountSOL)
	assert.Equal(t, 1, gateway.submissionCount())
}

func TestService_SendReward_ConvertsToLamports(t *testing.T) {
	var gotLamports uint64
	gateway := &mockGateway{}
	gateway.SubmitTransferFn = func(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
		gotLamports = lamports
		var sig solana.Signature
		sig[0] = 1
		return sig, nil
	}
	service := newTestService(gateway, time.Hour)

	_, err := service.SendReward(context.Background(), Request{
		Receiver:  testReceiver(),
		AmountSOL: floatPtr(0.02),
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(20_000_000), gotLamports)
}

func TestService_SendReward_Idempotence(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, time.Hour)
	req := Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	}

	first, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyPaid)

	second, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, first.Signature, second.Signature)

	// The gateway was only contacted once
	assert.Equal(t, 1, gateway.submissionCount())
}

func TestService_SendReward_NoKeyNoDedup(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, time.Hour)
	req := Request{
		Receiver:  testReceiver(),
		AmountSOL: floatPtr(0.02),
	}

	first, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)
	second, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, first.AlreadyPaid)
	assert.False(t, second.AlreadyPaid)
	assert.NotEqual(t, first.Signature, second.Signature)
	assert.Equal(t, 2, gateway.submissionCount())
}

func TestService_SendReward_KeyScopedByReceiver(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, time.Hour)

	_, err := service.SendReward(context.Background(), Request{
		Receiver: testReceiver(), AmountSOL: floatPtr(0.02), IdempotencyKey: "song_1",
	})
	require.NoError(t, err)

	result, err := service.SendReward(context.Background(), Request{
		Receiver: testReceiver(), AmountSOL: floatPtr(0.02), IdempotencyKey: "song_1",
	})
	require.NoError(t, err)

	assert.False(t, result.AlreadyPaid)
	assert.Equal(t, 2, gateway.submissionCount())
}

func TestService_SendReward_FailureLeavesNoTrace(t *testing.T) {
	gateway := &mockGateway{}
	gateway.SubmitTransferFn = func(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
		return solana.Signature{}, errors.New("insufficient funds")
	}
	service := newTestService(gateway, time.Hour)
	req := Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	}

	_, err := service.SendReward(context.Background(), req)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrCodeGatewayFailure, perr.Code)
	assert.False(t, perr.ClientFault())
	assert.Contains(t, perr.Message, "insufficient funds")

	// The failure left no record: a retry submits again and can succeed.
	gateway.SubmitTransferFn = nil
	result, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.AlreadyPaid)
	assert.Equal(t, 2, gateway.submissionCount())
}

func TestService_SendReward_BlockhashFailure(t *testing.T) {
	gateway := &mockGateway{}
	gateway.RecentBlockhashFn = func(ctx context.Context) (solana.Hash, error) {
		return solana.Hash{}, errors.New("rpc unavailable")
	}
	service := newTestService(gateway, time.Hour)

	_, err := service.SendReward(context.Background(), Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	})

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrCodeGatewayFailure, perr.Code)
	// Nothing reached the submission step
	assert.Equal(t, 0, gateway.submissionCount())
}

func TestService_SendReward_ValidationSkipsGateway(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, time.Hour)

	_, err := service.SendReward(context.Background(), Request{
		Receiver:  "not-an-address",
		AmountSOL: floatPtr(0.02),
	})

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrCodeInvalidReceiver, perr.Code)
	assert.Equal(t, 0, gateway.submissionCount())
}

func TestService_SendReward_RecordExpiry(t *testing.T) {
	gateway := &mockGateway{}
	service := newTestService(gateway, 10*time.Millisecond)
	req := Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	}

	_, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// The record aged out; the same key pays out again.
	result, err := service.SendReward(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.AlreadyPaid)
	assert.Equal(t, 2, gateway.submissionCount())
}

func TestService_SendReward_ConcurrentDuplicates(t *testing.T) {
	gateway := &mockGateway{}
	gateway.SubmitTransferFn = func(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
		// Hold the submission open long enough for duplicates to pile up.
		time.Sleep(20 * time.Millisecond)
		var sig solana.Signature
		sig[0] = 1
		return sig, nil
	}
	service := newTestService(gateway, time.Hour)
	req := Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	}

	const callers = 5
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.SendReward(context.Background(), req)
		}(i)
	}
	wg.Wait()

	// One ledger submission; every caller got the same signature.
	assert.Equal(t, 1, gateway.submissionCount())
	owners := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Signature, results[i].Signature)
		if !results[i].AlreadyPaid {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestService_SendReward_InFlightWaitCancelled(t *testing.T) {
	gateway := &mockGateway{}
	release := make(chan struct{})
	gateway.SubmitTransferFn = func(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
		<-release
		var sig solana.Signature
		sig[0] = 1
		return sig, nil
	}
	service := newTestService(gateway, time.Hour)
	req := Request{
		Receiver:       testReceiver(),
		AmountSOL:      floatPtr(0.02),
		IdempotencyKey: "song_1",
	}

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = service.SendReward(context.Background(), req)
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.SendReward(ctx, req)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrCodeGatewayFailure, perr.Code)

	close(release)
}
