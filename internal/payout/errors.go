package payout

import "fmt"

// Error is a payout-specific error with a machine-stable reason code.
// Validation codes are caller-fixable and map to 4xx responses at the
// boundary; ErrCodeGatewayFailure maps to 5xx.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeMissingReceiver  = "missing_receiver"
	ErrCodeInvalidReceiver  = "invalid_receiver"
	ErrCodeInvalidAmount    = "invalid_amount"
	ErrCodeAmountOutOfRange = "amount_out_of_range"
	ErrCodeGatewayFailure   = "gateway_failure"
)

// NewError creates a new payout error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// ClientFault reports whether the error is caller-fixable. Gateway failures
// are the only server-side variant.
func (e *Error) ClientFault() bool {
	return e.Code != ErrCodeGatewayFailure
}
