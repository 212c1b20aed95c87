// Package borrowbook creates a borrow record for the current user.
package borrowbook

import (
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const commandType = "BorrowBook"

// Command represents the intent to borrow a book for a loan period.
type Command struct {
	UserID     core.ID
	BookID     core.ID
	BorrowDate core.CalendarDate
	DueDate    core.CalendarDate
}

// BuildCommand creates a new Command from the dates of a borrow form.
func BuildCommand(userID, bookID core.ID, form core.BorrowForm) Command {
	return Command{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: form.BorrowDate,
		DueDate:    form.DueDate,
	}
}

// CommandType returns the command type identifier.
func (c Command) CommandType() string {
	return commandType
}
