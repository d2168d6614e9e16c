package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

// Config is the process configuration, loaded from environment variables
// (a .env file is honored if present).
type Config struct {
	// LedgerEndpoint is the Solana RPC endpoint the gateway connects to.
	LedgerEndpoint string `koanf:"ledger_endpoint" validate:"required"`
	// SigningCredential is the base58-encoded secret of the payout wallet.
	// The process refuses to start without it.
	SigningCredential string `koanf:"signing_credential" validate:"required"`
	// DefaultPayoutAmount is substituted when a request omits amount_sol.
	DefaultPayoutAmount float64 `koanf:"default_payout_amount" validate:"gt=0"`
	// MaxPayout caps a single payout, in SOL.
	MaxPayout float64 `koanf:"max_payout" validate:"gt=0"`
	// IdempotencyTTL bounds how long a recorded payout keeps deduplicating
	// retries of the same key.
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl" validate:"required"`
	// Port the HTTP boundary listens on.
	Port string `koanf:"port" validate:"required"`
}

const (
	defaultLedgerEndpoint = "https://api.devnet.solana.com"
	defaultPayoutAmount   = 0.01
	defaultMaxPayout      = 0.5
	defaultIdempotencyTTL = 7 * 24 * time.Hour
	defaultPort           = "8080"
)

// Load reads configuration from the environment. Unset or empty keys fall
// back to the reference defaults; a missing signing credential is a hard
// error.
func Load() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	cfg := &Config{}

	err = k.Unmarshal("", cfg)
	if err != nil {
		logger.Error("could not unmarshal config", "error", err)
		return nil, err
	}

	if cfg.LedgerEndpoint == "" {
		cfg.LedgerEndpoint = defaultLedgerEndpoint
	}
	if cfg.DefaultPayoutAmount == 0 {
		cfg.DefaultPayoutAmount = defaultPayoutAmount
	}
	if cfg.MaxPayout == 0 {
		cfg.MaxPayout = defaultMaxPayout
	}
	if cfg.IdempotencyTTL == 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	validate := validator.New()

	err = validate.Struct(cfg)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return cfg, nil
}
