package catalog

import (
	"context"
	"net/url"
	"strconv"

	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Route is the backend endpoint listing books.
const Route = "/books"

// QueryHandler handles catalog queries.
type QueryHandler struct {
	requester shell.Requester
	names     *NameResolver
}

// NewQueryHandler creates a new QueryHandler. names may be nil, leaving the name columns empty.
func NewQueryHandler(requester shell.Requester, names *NameResolver) QueryHandler {
	return QueryHandler{requester: requester, names: names}
}

// Handle fetches one page and fills the derived name columns.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	query = query.normalized()

	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("pageSize", strconv.Itoa(query.PageSize))

	if query.Search != "" {
		params.Set("search", query.Search)
	}

	if query.Category != "" {
		params.Set("category", query.Category)
	}

	if query.Author != "" {
		params.Set("author", query.Author)
	}

	var result Result
	if err := h.requester.Get(ctx, Route, params, &result); err != nil {
		return Result{}, err
	}

	if result.Page < 1 {
		result.Page = query.Page
	}

	if result.PageSize < 1 {
		result.PageSize = query.PageSize
	}

	if h.names != nil {
		h.names.Fill(ctx, result.Items)
	}

	return result, nil
}

var _ shell.QueryHandler[Query, Result] = QueryHandler{}
