package core

// DecisionResult represents the outcome of a submit decision.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// ProceedDecision() or BlockedDecision(err, notices...).
type DecisionResult struct {
	Outcome string // "proceed" or "blocked"
	Notices []Notice
	Err     error
}

const (
	proceedOutcome = "proceed"
	blockedOutcome = "blocked"
)

// ProceedDecision creates a DecisionResult that lets the request go out.
func ProceedDecision() DecisionResult {
	return DecisionResult{Outcome: proceedOutcome}
}

// BlockedDecision creates a DecisionResult that stops the request locally and carries the notices to show.
func BlockedDecision(err error, notices ...Notice) DecisionResult {
	return DecisionResult{
		Outcome: blockedOutcome,
		Notices: notices,
		Err:     err,
	}
}

// ShouldProceed returns true if the request may be sent.
func (r DecisionResult) ShouldProceed() bool {
	return r.Outcome == proceedOutcome
}

// HasError returns the error if the decision blocked the request, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == blockedOutcome {
		return r.Err
	}

	return nil
}
