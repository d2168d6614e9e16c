package ledger

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client submits native SOL transfers through a Solana RPC node.
//
// The client performs no automatic retries. A failed submission is opaque to
// the caller (network failure, rejection, insufficient funds, stale
// blockhash); retry policy belongs to the orchestrator.
type Client struct {
	rpc    *rpc.Client
	signer *Signer
}

// NewClient creates a gateway connected to the given RPC endpoint, paying
// out of the signer's wallet.
func NewClient(endpoint string, signer *Signer) *Client {
	return &Client{
		rpc:    rpc.New(endpoint),
		signer: signer,
	}
}

// RecentBlockhash fetches the freshness token the cluster requires on a
// submission. Blockhashes have a short validity window set by the cluster.
func (c *Client) RecentBlockhash(ctx context.Context) (solana.Hash, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return latest.Value.Blockhash, nil
}

// SubmitTransfer builds, signs, and submits a single system-program transfer
// of lamports to the given account. It returns the transaction signature as
// soon as the node accepts the submission; it does not wait for on-chain
// confirmation.
func (c *Client) SubmitTransfer(ctx context.Context, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (solana.Signature, error) {
	// Build the transfer instruction
	transferIx, err := system.NewTransferInstruction(
		lamports,
		c.signer.Address(),
		to,
	).ValidateAndBuild()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transfer instruction: %w", err)
	}

	// Create final transaction
	tx, err := solana.NewTransactionBuilder().
		AddInstruction(transferIx).
		SetRecentBlockHash(blockhash).
		SetFeePayer(c.signer.Address()).
		Build()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Sign with the wallet key
	if err := c.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	// Send transaction
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}
