package returnbook

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Route is the backend endpoint returning borrow records.
const Route = "/borrow-records/return-borrow-record"

type requestBody struct {
	UserID     core.ID           `json:"userId"`
	BookID     core.ID           `json:"bookId"`
	RecordID   core.ID           `json:"recordId"`
	ReturnDate core.CalendarDate `json:"returnDate"`
	Status     core.BorrowStatus `json:"status"`
}

// CommandHandler handles ReturnBook commands.
type CommandHandler struct {
	requester shell.Requester
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(requester shell.Requester) CommandHandler {
	return CommandHandler{requester: requester}
}

// Handle validates the command locally and submits it.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	decision := Decide(command)
	if err := decision.HasError(); err != nil {
		return shell.NewRejectedResult(), fmt.Errorf("%w: %w", shell.ErrRejectedLocally, err)
	}

	body := requestBody{
		UserID:     command.UserID,
		BookID:     command.BookID,
		RecordID:   command.RecordID,
		ReturnDate: command.ReturnDate,
		Status:     core.BorrowStatusReturned,
	}

	var record core.BorrowRecord
	if err := h.requester.Post(ctx, Route, body, &record); err != nil {
		return shell.NewErrorResult(), err
	}

	return shell.NewSuccessResult(record), nil
}

var _ shell.CommandHandler[Command] = CommandHandler{}
