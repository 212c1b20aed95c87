package returnbook

import (
	"errors"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

// ErrReturnDateRequired is returned for commands without a return date.
var ErrReturnDateRequired = errors.New("return date is required")

// Decide checks locally whether the return request may be sent.
//
// Business Rules:
//
//	GIVEN: a loaded borrow record and today's date
//	WHEN: ReturnBook command is received
//	THEN: the return request is sent
//	BLOCKED: "borrow record id is missing" if no record id is known
//	BLOCKED: "overdue fine not acknowledged" if overdue and not acknowledged (warning notice)
func Decide(command Command) core.DecisionResult {
	if command.ReturnDate.IsZero() {
		return core.BlockedDecision(ErrReturnDateRequired, core.ErrorNotice(core.MsgActionFailed))
	}

	return core.DecideReturn(command.RecordID, command.Overdue, command.FineAcknowledged)
}
