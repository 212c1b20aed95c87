package resolvestatus

import (
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const queryType = "ResolveBorrowStatus"

// Query represents the intent to look up the borrow status of one book for one user.
type Query struct {
	UserID core.ID
	BookID core.ID
}

// BuildQuery creates a new Query.
func BuildQuery(userID, bookID core.ID) Query {
	return Query{UserID: userID, BookID: bookID}
}

// QueryType returns the query type identifier.
func (q Query) QueryType() string {
	return queryType
}
