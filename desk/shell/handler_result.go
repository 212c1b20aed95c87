package shell

import (
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

// HandlerResult represents the outcome of a command handler execution.
type HandlerResult struct {
	// RequestSent is false when the command was rejected locally and the backend was never called.
	RequestSent bool

	// Record is the borrow record as returned by the backend after a successful submission.
	Record core.BorrowRecord
}

// NewSuccessResult creates a HandlerResult for a submission the backend accepted.
func NewSuccessResult(record core.BorrowRecord) HandlerResult {
	return HandlerResult{RequestSent: true, Record: record}
}

// NewRejectedResult creates a HandlerResult for a command that was rejected before any request.
func NewRejectedResult() HandlerResult {
	return HandlerResult{RequestSent: false}
}

// NewErrorResult creates a HandlerResult for a submission the backend failed or refused.
func NewErrorResult() HandlerResult {
	return HandlerResult{RequestSent: true}
}
