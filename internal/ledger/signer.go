// Package ledger implements the Solana-facing payout gateway: the custodial
// wallet signer and the RPC client that submits native transfers.
package ledger

import (
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// Signer holds the payout wallet keypair. It is loaded once at process start
// and read-only afterwards; any number of in-flight submissions may use it
// concurrently.
type Signer struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSignerFromBase58 creates a signer from a base58-encoded private key
// (the 64-byte ed25519 keypair encoding).
func NewSignerFromBase58(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing credential is required")
	}

	privateKey, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid signing credential: %w", err)
	}

	return &Signer{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// Address returns the Solana public key of the payout wallet.
func (s *Signer) Address() solana.PublicKey {
	return s.publicKey
}

// SignTransaction signs a Solana transaction with the wallet key.
// This adds the signature to the transaction at the appropriate index.
func (s *Signer) SignTransaction(tx *solana.Transaction) error {
	// Marshal transaction message to bytes
	messageBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Sign the message bytes with Ed25519
	signature, err := s.privateKey.Sign(messageBytes)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	// Find the index of our public key in the transaction
	accountIndex, err := tx.GetAccountIndex(s.publicKey)
	if err != nil {
		return fmt.Errorf("failed to get account index: %w", err)
	}

	// Ensure signatures array is large enough
	if len(tx.Signatures) <= int(accountIndex) {
		newSignatures := make([]solana.Signature, accountIndex+1)
		copy(newSignatures, tx.Signatures)
		tx.Signatures = newSignatures
	}

	// Add our signature at the correct index
	tx.Signatures[accountIndex] = signature

	return nil
}
