package catalog

import (
	"context"
	"io"
	"sync"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// ListView keeps the current catalog query and the last loaded page.
type ListView struct {
	mu      sync.Mutex
	handler shell.QueryHandler[Query, Result]
	query   Query
	result  Result
}

// NewListView creates a ListView on page 1.
func NewListView(handler shell.QueryHandler[Query, Result], pageSize int) *ListView {
	return &ListView{handler: handler, query: BuildQuery(pageSize).normalized()}
}

// SetFilters replaces search and filters and goes back to page 1. It does not load.
func (v *ListView) SetFilters(search, category, author string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.query.Search = search
	v.query.Category = category
	v.query.Author = author
	v.query.Page = 1
}

// Query returns the current query.
func (v *ListView) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.query
}

// Result returns the last loaded page.
func (v *ListView) Result() Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.result
}

// Load fetches the current page.
func (v *ListView) Load(ctx context.Context) (Result, error) {
	return v.load(ctx, v.Query())
}

// Refresh re-queries the current page, e.g. after a borrow or return changed availability.
func (v *ListView) Refresh(ctx context.Context) error {
	_, err := v.Load(ctx)
	return err
}

// NextPage loads the following page if there is one.
func (v *ListView) NextPage(ctx context.Context) (Result, error) {
	v.mu.Lock()
	query, result := v.query, v.result
	v.mu.Unlock()

	if !result.HasNextPage() {
		return result, nil
	}

	query.Page++

	return v.load(ctx, query)
}

// GoToPage loads page (minimum 1) with the current filters.
func (v *ListView) GoToPage(ctx context.Context, page int) (Result, error) {
	query := v.Query()
	query.Page = max(page, 1)

	return v.load(ctx, query)
}

// PrevPage loads the preceding page if there is one.
func (v *ListView) PrevPage(ctx context.Context) (Result, error) {
	v.mu.Lock()
	query, result := v.query, v.result
	v.mu.Unlock()

	if query.Page <= 1 {
		return result, nil
	}

	query.Page--

	return v.load(ctx, query)
}

func (v *ListView) load(ctx context.Context, query Query) (Result, error) {
	result, err := v.handler.Handle(ctx, query)
	if err != nil {
		return Result{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.query = query
	v.result = result

	return result, nil
}

// AvailableCopies returns the available copies of a book on the loaded page.
func (v *ListView) AvailableCopies(bookID core.ID) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, item := range v.result.Items {
		if item.ID == bookID {
			return item.AvailableCopies, true
		}
	}

	return 0, false
}

// Book returns a book on the loaded page.
func (v *ListView) Book(bookID core.ID) (core.BookSummary, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, item := range v.result.Items {
		if item.ID == bookID {
			return item, true
		}
	}

	return core.BookSummary{}, false
}

// ExportAll pages through every result of the current filters and writes them as CSV.
// The loaded page is not changed.
func (v *ListView) ExportAll(ctx context.Context, w io.Writer) error {
	query := v.Query()
	query.Page = 1

	var items []core.BookSummary

	for {
		result, err := v.handler.Handle(ctx, query)
		if err != nil {
			return err
		}

		items = append(items, result.Items...)

		if !result.HasNextPage() || len(result.Items) == 0 {
			break
		}

		query.Page++
	}

	return Export(w, items)
}
