package core

// BorrowStatus is the state of the most recent borrow record between a user and a book.
type BorrowStatus string

const (
	// BorrowStatusNone means no record exists, or the backend could not be asked.
	BorrowStatusNone     BorrowStatus = ""
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
)

// ParseBorrowStatus maps a backend status string onto a BorrowStatus.
// Unknown values collapse to BorrowStatusNone and report false.
func ParseBorrowStatus(raw string) (BorrowStatus, bool) {
	switch BorrowStatus(raw) {
	case BorrowStatusBorrowed:
		return BorrowStatusBorrowed, true
	case BorrowStatusReturned:
		return BorrowStatusReturned, true
	case BorrowStatusNone:
		return BorrowStatusNone, true
	default:
		return BorrowStatusNone, false
	}
}

// BorrowRelation is the resolved relationship between the current user and one book.
// RecordID is set whenever a record exists.
type BorrowRelation struct {
	Status   BorrowStatus
	RecordID ID
}

// NoRelation is the relation used whenever status resolution fails.
func NoRelation() BorrowRelation {
	return BorrowRelation{}
}

// HasRecord reports whether the relation points at an existing borrow record.
func (r BorrowRelation) HasRecord() bool {
	return !r.RecordID.IsZero()
}

// IsBorrowed reports whether the user currently holds the book.
func (r BorrowRelation) IsBorrowed() bool {
	return r.Status == BorrowStatusBorrowed
}

// BorrowRecord is a persisted loan as returned by the backend.
type BorrowRecord struct {
	ID         ID            `json:"id"`
	UserID     ID            `json:"userId"`
	BookID     ID            `json:"bookId"`
	BorrowDate CalendarDate  `json:"borrowDate"`
	DueDate    CalendarDate  `json:"dueDate"`
	ReturnDate *CalendarDate `json:"returnDate,omitempty"`
	Status     BorrowStatus  `json:"status"`
}

// Relation derives the BorrowRelation a status lookup would report for this record.
func (r BorrowRecord) Relation() BorrowRelation {
	return BorrowRelation{Status: r.Status, RecordID: r.ID}
}
