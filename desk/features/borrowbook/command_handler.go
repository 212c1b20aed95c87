package borrowbook

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Route is the backend endpoint creating borrow records.
const Route = "/borrow-records/add-borrow-record"

type requestBody struct {
	UserID     core.ID           `json:"userId"`
	BookID     core.ID           `json:"bookId"`
	BorrowDate core.CalendarDate `json:"borrowDate"`
	DueDate    core.CalendarDate `json:"dueDate"`
	Status     core.BorrowStatus `json:"status"`
}

// CommandHandler handles BorrowBook commands.
type CommandHandler struct {
	requester shell.Requester
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(requester shell.Requester) CommandHandler {
	return CommandHandler{requester: requester}
}

// Handle validates the command locally and submits it.
// Locally rejected commands return an error wrapping shell.ErrRejectedLocally and send nothing.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	decision := Decide(command)
	if err := decision.HasError(); err != nil {
		return shell.NewRejectedResult(), fmt.Errorf("%w: %w", shell.ErrRejectedLocally, err)
	}

	body := requestBody{
		UserID:     command.UserID,
		BookID:     command.BookID,
		BorrowDate: command.BorrowDate,
		DueDate:    command.DueDate,
		Status:     core.BorrowStatusBorrowed,
	}

	var record core.BorrowRecord
	if err := h.requester.Post(ctx, Route, body, &record); err != nil {
		return shell.NewErrorResult(), err
	}

	return shell.NewSuccessResult(record), nil
}

var _ shell.CommandHandler[Command] = CommandHandler{}
