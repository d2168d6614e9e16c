// Package server exposes the HTTP boundary of the payout service. It decodes
// requests into the orchestrator's input shape and encodes its results; no
// payout logic lives here.
package server

import (
	"context"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/solstream/rewarder/internal/payout"
)

// Payouts is the orchestration capability the transport depends on.
type Payouts interface {
	SendReward(ctx context.Context, req payout.Request) (*payout.Result, error)
}

// Server holds the HTTP handlers and the static facts the health endpoint
// reports.
type Server struct {
	payouts          Payouts
	rpcEndpoint      string
	fromWallet       string
	defaultRewardSOL float64
	log              *slog.Logger
}

// New creates a server. fromWallet is the payout wallet address; it and the
// RPC endpoint are surfaced on /health and in payout responses.
func New(payouts Payouts, rpcEndpoint, fromWallet string, defaultRewardSOL float64, log *slog.Logger) *Server {
	return &Server{
		payouts:          payouts,
		rpcEndpoint:      rpcEndpoint,
		fromWallet:       fromWallet,
		defaultRewardSOL: defaultRewardSOL,
		log:              log,
	}
}

// Router builds the gin engine with all middleware and routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(s.requestLog())
	// Allow all origins, no credentials
	router.Use(cors.Default())

	router.GET("/health", s.handleHealth)
	router.POST("/reward/send", s.handleRewardSend)

	return router
}
