package core

import "errors"

// BorrowForm holds the dates the user picked in the borrow prompt.
// A zero CalendarDate means the field was not filled in yet.
type BorrowForm struct {
	BorrowDate CalendarDate
	DueDate    CalendarDate
}

// NewBorrowForm pre-fills the borrow date with today.
func NewBorrowForm(today CalendarDate) BorrowForm {
	return BorrowForm{BorrowDate: today}
}

// TotalDays is the calendar difference between due date and borrow date.
// It reports false until both dates are set and the due date is after the borrow date.
func (f BorrowForm) TotalDays() (int, bool) {
	if ValidateLoanPeriod(f.BorrowDate, f.DueDate) != nil {
		return 0, false
	}

	return f.BorrowDate.DaysUntil(f.DueDate), true
}

// ValidateLoanPeriod checks that both dates are present and the due date is strictly after the borrow date.
func ValidateLoanPeriod(borrowDate, dueDate CalendarDate) error {
	var errs []error

	if borrowDate.IsZero() {
		errs = append(errs, ErrBorrowDateRequired)
	}

	if dueDate.IsZero() {
		errs = append(errs, ErrDueDateRequired)
	}

	if len(errs) == 0 && !dueDate.After(borrowDate) {
		errs = append(errs, ErrDueDateNotAfterBorrowDate)
	}

	return errors.Join(errs...)
}

// DecideBorrowSubmit validates the form before any request is made.
//
// Business Rules:
//
//	GIVEN: a borrow prompt with a borrow date and a due date
//	WHEN: the user submits
//	THEN: the borrow request may be sent
//	BLOCKED: a field notice per missing date
//	BLOCKED: a field notice on the due date if it is not after the borrow date
func DecideBorrowSubmit(form BorrowForm) DecisionResult {
	err := ValidateLoanPeriod(form.BorrowDate, form.DueDate)
	if err == nil {
		return ProceedDecision()
	}

	var notices []Notice

	if errors.Is(err, ErrBorrowDateRequired) {
		notices = append(notices, Notice{Kind: NoticeField, Message: MsgBorrowDateRequired, Field: FieldBorrowDate})
	}

	if errors.Is(err, ErrDueDateRequired) {
		notices = append(notices, Notice{Kind: NoticeField, Message: MsgDueDateRequired, Field: FieldDueDate})
	}

	if errors.Is(err, ErrDueDateNotAfterBorrowDate) {
		notices = append(notices, Notice{Kind: NoticeField, Message: MsgDueDateNotAfterBorrow, Field: FieldDueDate})
	}

	return BlockedDecision(err, notices...)
}
