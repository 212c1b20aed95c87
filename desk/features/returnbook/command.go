// Package returnbook closes the current user's active borrow record.
package returnbook

import (
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const commandType = "ReturnBook"

// Command represents the intent to return a borrowed book today.
// Overdue and FineAcknowledged carry the prompt's acknowledgment gate into the handler.
type Command struct {
	UserID           core.ID
	BookID           core.ID
	RecordID         core.ID
	ReturnDate       core.CalendarDate
	Overdue          bool
	FineAcknowledged bool
}

// BuildCommand creates a new Command from a return prompt. The return date is the prompt's today.
func BuildCommand(userID, bookID core.ID, prompt core.ReturnPrompt) Command {
	return Command{
		UserID:           userID,
		BookID:           bookID,
		RecordID:         prompt.Record.ID,
		ReturnDate:       prompt.Today,
		Overdue:          prompt.RequiresAcknowledgment(),
		FineAcknowledged: prompt.Acknowledged,
	}
}

// CommandType returns the command type identifier.
func (c Command) CommandType() string {
	return commandType
}
