// Package loadborrowrecord fetches one borrow record, used when a return is prepared.
package loadborrowrecord

import (
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const queryType = "LoadBorrowRecord"

// Query represents the intent to load a borrow record by id.
type Query struct {
	RecordID core.ID
}

// BuildQuery creates a new Query.
func BuildQuery(recordID core.ID) Query {
	return Query{RecordID: recordID}
}

// QueryType returns the query type identifier.
func (q Query) QueryType() string {
	return queryType
}
