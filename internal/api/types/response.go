// internal/api/types/response.go
package types

// ErrorResponse carries a human-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse acknowledges an operation with no entity payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConsumeResponse is returned to the scanner after a successful use.
type ConsumeResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	RemainingBalance int64  `json:"remaining_balance"`
}
