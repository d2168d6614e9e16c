package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solstream/rewarder/internal/payout"
)

type rewardRequest struct {
	ReceiverWalletAddress string   `json:"receiver_wallet_address"`
	AmountSol             *float64 `json:"amount_sol"`
	IdempotencyKey        string   `json:"idempotency_key"`
}

// handleHealth reports the service's static configuration. No side effects.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":                 true,
		"rpc":                s.rpcEndpoint,
		"from_wallet":        s.fromWallet,
		"default_reward_sol": s.defaultRewardSOL,
	})
}

// handleRewardSend decodes a payout request, runs it through the
// orchestrator, and maps the error taxonomy onto status codes: validation
// failures are 400, gateway failures 500.
func (s *Server) handleRewardSend(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// An empty body falls through to validation, which reports the
		// missing receiver.
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("Invalid request body: %v", err),
		})
		return
	}

	result, err := s.payouts.SendReward(c.Request.Context(), payout.Request{
		Receiver:       req.ReceiverWalletAddress,
		AmountSOL:      req.AmountSol,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()

		var perr *payout.Error
		if errors.As(err, &perr) {
			message = perr.Message
			if perr.ClientFault() {
				status = http.StatusBadRequest
			}
		}

		c.JSON(status, gin.H{"ok": false, "error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"signature":    result.Signature,
		"already_paid": result.AlreadyPaid,
		"from_wallet":  s.fromWallet,
		"to_wallet":    result.Receiver,
		"amount_sol":   result.AmountSOL,
	})
}
