package loadborrowrecord

import (
	"context"
	"net/url"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// RoutePrefix is the backend collection of borrow records.
const RoutePrefix = "/borrow-records/"

// Route returns the backend path of one borrow record.
func Route(recordID core.ID) string {
	return RoutePrefix + url.PathEscape(recordID.String())
}

// QueryHandler handles borrow record queries.
type QueryHandler struct {
	requester shell.Requester
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(requester shell.Requester) QueryHandler {
	return QueryHandler{requester: requester}
}

// Handle loads the record. A query without a record id fails with core.ErrMissingRecordID
// and makes no request.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.BorrowRecord, error) {
	if query.RecordID.IsZero() {
		return core.BorrowRecord{}, core.ErrMissingRecordID
	}

	var record core.BorrowRecord
	if err := h.requester.Get(ctx, Route(query.RecordID), nil, &record); err != nil {
		return core.BorrowRecord{}, err
	}

	if record.ID.IsZero() {
		record.ID = query.RecordID
	}

	return record, nil
}

var _ shell.QueryHandler[Query, core.BorrowRecord] = QueryHandler{}
