package core

import (
	"github.com/shopspring/decimal"
)

// BookSummary is a catalog entry as listed by the backend.
// AuthorName and CategoryName are filled in by the catalog feature from the reference collections.
type BookSummary struct {
	ID              ID              `json:"id"`
	Title           string          `json:"title"`
	ISBN            string          `json:"isbn,omitempty"`
	AuthorID        ID              `json:"authorId,omitempty"`
	CategoryID      ID              `json:"categoryId,omitempty"`
	AuthorName      string          `json:"authorName,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	AvailableCopies int             `json:"availableCopies"`
	TotalCopies     int             `json:"totalCopies,omitempty"`
	PointValue      decimal.Decimal `json:"pointValue"`
}

// CanBorrow is the single availability predicate shared by the catalog list and the detail view:
// at least one copy is available and the user does not currently hold the book.
func CanBorrow(availableCopies int, status BorrowStatus) bool {
	return availableCopies > 0 && status != BorrowStatusBorrowed
}

// CanBorrow applies the availability predicate for a user without an active loan of this book.
func (b BookSummary) CanBorrow() bool {
	return CanBorrow(b.AvailableCopies, BorrowStatusNone)
}
