package main

import (
	"log/slog"
	"os"

	"github.com/solstream/rewarder/internal/config"
	"github.com/solstream/rewarder/internal/idempotency"
	"github.com/solstream/rewarder/internal/ledger"
	"github.com/solstream/rewarder/internal/payout"
	"github.com/solstream/rewarder/internal/server"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	signer, err := ledger.NewSignerFromBase58(cfg.SigningCredential)
	if err != nil {
		log.Error("could not load signing credential", "error", err)
		os.Exit(1)
	}

	gateway := ledger.NewClient(cfg.LedgerEndpoint, signer)
	store := idempotency.NewInMemoryStore(cfg.IdempotencyTTL)

	payouts := payout.NewService(gateway, store, payout.Config{
		DefaultAmountSOL: cfg.DefaultPayoutAmount,
		MaxPayoutSOL:     cfg.MaxPayout,
	}, log)

	srv := server.New(payouts, cfg.LedgerEndpoint, signer.Address().String(), cfg.DefaultPayoutAmount, log)

	log.Info("starting reward payout service",
		"port", cfg.Port,
		"rpc", cfg.LedgerEndpoint,
		"from_wallet", signer.Address().String(),
		"default_reward_sol", cfg.DefaultPayoutAmount,
	)

	if err := srv.Router().Run(":" + cfg.Port); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
