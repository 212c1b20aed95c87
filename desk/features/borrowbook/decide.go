package borrowbook

import (
	"errors"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

var (
	// ErrUserIDRequired is returned for commands without an acting user.
	ErrUserIDRequired = errors.New("user id is required")

	// ErrBookIDRequired is returned for commands without a book.
	ErrBookIDRequired = errors.New("book id is required")
)

// Decide checks locally whether the borrow request may be sent.
// This is a pure function; availability and double borrowing are decided by the backend.
//
// Business Rules:
//
//	GIVEN: a user, a book, a borrow date and a due date
//	WHEN: BorrowBook command is received
//	THEN: the borrow request is sent
//	BLOCKED: "user id is required" / "book id is required"
//	BLOCKED: missing dates or a due date not after the borrow date (field notices)
func Decide(command Command) core.DecisionResult {
	if command.UserID.IsZero() {
		return core.BlockedDecision(ErrUserIDRequired, core.ErrorNotice(core.MsgActionFailed))
	}

	if command.BookID.IsZero() {
		return core.BlockedDecision(ErrBookIDRequired, core.ErrorNotice(core.MsgActionFailed))
	}

	return core.DecideBorrowSubmit(core.BorrowForm{BorrowDate: command.BorrowDate, DueDate: command.DueDate})
}
