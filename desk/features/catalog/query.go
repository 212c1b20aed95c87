package catalog

import (
	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
)

const (
	queryType = "ListCatalog"

	// DefaultPageSize is used when a query does not specify a page size.
	DefaultPageSize = 20
)

// Query represents one page of the catalog with optional filters.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Author   string
}

// BuildQuery creates a Query for page 1 with the given page size.
func BuildQuery(pageSize int) Query {
	return Query{Page: 1, PageSize: pageSize}
}

// QueryType returns the query type identifier.
func (q Query) QueryType() string {
	return queryType
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}

	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}

	return q
}

// Result is one page of catalog rows.
type Result struct {
	Items    []core.BookSummary `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// TotalPages returns the number of pages for Total items (at least 1).
func (r Result) TotalPages() int {
	if r.PageSize < 1 || r.Total <= r.PageSize {
		return 1
	}

	return (r.Total + r.PageSize - 1) / r.PageSize
}

// HasNextPage reports whether a page after the current one exists.
func (r Result) HasNextPage() bool {
	return r.Page < r.TotalPages()
}

// CanManageBooks reports whether profile may maintain the catalog.
func CanManageBooks(profile apiclient.Profile) bool {
	return admin.CanManage(profile)
}
