package resolvestatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Route is the backend endpoint for borrow status lookups.
const Route = "/borrow-records/get-borrow-status"

// ErrUnknownStatus is returned when the backend reports a status this client does not know.
var ErrUnknownStatus = errors.New("unknown borrow status")

type requestBody struct {
	UserID core.ID `json:"userId"`
	BookID core.ID `json:"bookId"`
}

type responseBody struct {
	Status   string  `json:"status"`
	RecordID core.ID `json:"recordId"`
}

// QueryHandler handles borrow status queries.
type QueryHandler struct {
	requester shell.Requester
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(requester shell.Requester) QueryHandler {
	return QueryHandler{requester: requester}
}

// Handle posts the lookup and maps the answer onto a BorrowRelation.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.BorrowRelation, error) {
	var resp responseBody

	err := h.requester.Post(ctx, Route, requestBody{UserID: query.UserID, BookID: query.BookID}, &resp)
	if err != nil {
		return core.NoRelation(), err
	}

	status, known := core.ParseBorrowStatus(resp.Status)
	if !known {
		return core.NoRelation(), fmt.Errorf("%w: %q", ErrUnknownStatus, resp.Status)
	}

	return core.BorrowRelation{Status: status, RecordID: resp.RecordID}, nil
}

var _ shell.QueryHandler[Query, core.BorrowRelation] = QueryHandler{}
