package core

import "errors"

var (
	// ErrBorrowDateRequired is returned when a borrow is submitted without a borrow date.
	ErrBorrowDateRequired = errors.New("borrow date is required")

	// ErrDueDateRequired is returned when a borrow is submitted without a due date.
	ErrDueDateRequired = errors.New("due date is required")

	// ErrDueDateNotAfterBorrowDate is returned when the due date is not strictly after the borrow date.
	ErrDueDateNotAfterBorrowDate = errors.New("due date must be after borrow date")

	// ErrMissingRecordID is returned when a return is attempted without a known borrow record.
	ErrMissingRecordID = errors.New("borrow record id is missing")

	// ErrFineNotAcknowledged is returned when an overdue return is submitted without acknowledging the fine.
	ErrFineNotAcknowledged = errors.New("overdue fine not acknowledged")

	// ErrBookNotAvailable is returned when a borrow is attempted for a book the user cannot borrow.
	ErrBookNotAvailable = errors.New("book is not available for borrowing")
)
