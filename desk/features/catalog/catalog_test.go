package catalog_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/features/catalog"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

type noSession struct{}

func (noSession) Session() (apiclient.Session, bool) { return apiclient.Session{}, false }

func bookRow(id string, available int) map[string]any {
	return map[string]any{
		"id":              id,
		"title":           "Book " + id,
		"isbn":            "978-" + id,
		"authorId":        "a1",
		"categoryId":      "c1",
		"availableCopies": available,
		"totalCopies":     3,
		"pointValue":      "12.5",
	}
}

func pageOf(total, page, pageSize int, rows ...map[string]any) map[string]any {
	return map[string]any{"items": rows, "total": total, "page": page, "pageSize": pageSize}
}

func newHandler(t *testing.T, requester *testdoubles.RequesterSpy, logger *testdoubles.LoggerSpy) catalog.QueryHandler {
	t.Helper()

	names, err := catalog.NewNameResolver(
		catalog.AuthorNames(admin.Authors(requester, noSession{})),
		catalog.CategoryNames(admin.Categories(requester, noSession{})),
		catalog.DefaultNameCacheSize,
		catalog.WithNameContextualLogger(logger),
	)
	require.NoError(t, err)

	return catalog.NewQueryHandler(requester, names)
}

func Test_QueryHandler_Handle_EncodesQueryAndDerivesColumns(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodGet, catalog.Route, pageOf(2, 1, 20, bookRow("1", 3), bookRow("2", 0))).
		RespondWith(http.MethodGet, "/authors/a1", map[string]any{"id": "a1", "name": "Octavia Butler"}).
		RespondWith(http.MethodGet, "/categories/c1", map[string]any{"id": "c1", "name": "Fiction"})
	handler := newHandler(t, requester, testdoubles.NewLoggerSpy())

	// act
	result, err := handler.Handle(context.Background(), catalog.Query{Page: 1, PageSize: 20, Search: "kin", Author: "a1"})

	// assert
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Octavia Butler", result.Items[0].AuthorName)
	assert.Equal(t, "Fiction", result.Items[1].CategoryName)
	assert.True(t, result.Items[0].CanBorrow())
	assert.False(t, result.Items[1].CanBorrow())

	req, found := requester.Last(http.MethodGet, catalog.Route)
	require.True(t, found)
	assert.Equal(t, "kin", req.Query.Get("search"))
	assert.Equal(t, "a1", req.Query.Get("author"))
	assert.False(t, req.Query.Has("category"))
	assert.Equal(t, "20", req.Query.Get("pageSize"))

	assert.Equal(t, 1, requester.Count(http.MethodGet, "/authors/a1"))
	assert.Equal(t, 1, requester.Count(http.MethodGet, "/categories/c1"))
}

func Test_QueryHandler_Handle_SecondLoadUsesNameCache(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodGet, catalog.Route, pageOf(1, 1, 20, bookRow("1", 3))).
		RespondWith(http.MethodGet, "/authors/a1", map[string]any{"id": "a1", "name": "Octavia Butler"}).
		RespondWith(http.MethodGet, "/categories/c1", map[string]any{"id": "c1", "name": "Fiction"})
	handler := newHandler(t, requester, testdoubles.NewLoggerSpy())

	_, err := handler.Handle(context.Background(), catalog.BuildQuery(20))
	require.NoError(t, err)
	requester.Reset()

	// act
	result, err := handler.Handle(context.Background(), catalog.BuildQuery(20))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Octavia Butler", result.Items[0].AuthorName)
	assert.Equal(t, 0, requester.Count(http.MethodGet, "/authors/a1"))
	assert.Equal(t, 0, requester.Count(http.MethodGet, "/categories/c1"))
	assert.Equal(t, 1, requester.Count(http.MethodGet, catalog.Route))
}

func Test_QueryHandler_Handle_LookupFailureLeavesNameEmpty(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodGet, catalog.Route, pageOf(1, 1, 20, bookRow("1", 3))).
		FailWith(http.MethodGet, "/authors/a1", apiclient.NewAPIError(apiclient.KindNotFound, 404, "missing")).
		RespondWith(http.MethodGet, "/categories/c1", map[string]any{"id": "c1", "name": "Fiction"})
	logger := testdoubles.NewLoggerSpy()
	handler := newHandler(t, requester, logger)

	// act
	result, err := handler.Handle(context.Background(), catalog.BuildQuery(20))

	// assert
	require.NoError(t, err)
	assert.Empty(t, result.Items[0].AuthorName)
	assert.Equal(t, "Fiction", result.Items[0].CategoryName)
	assert.Len(t, logger.RecordsAt(testdoubles.LevelWarn), 1)
}

func Test_NewNameResolver_RejectsInvalidCacheSize(t *testing.T) {
	_, err := catalog.NewNameResolver(nil, nil, 0)

	assert.ErrorIs(t, err, catalog.ErrInvalidCacheSize)
}

func Test_ListView_Paging(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().On(http.MethodGet, catalog.Route,
		func(_ context.Context, req testdoubles.RequestRecord) (any, error) {
			page, _ := strconv.Atoi(req.Query.Get("page"))
			return pageOf(3, page, 2, bookRow(strconv.Itoa(page), page)), nil
		})
	view := catalog.NewListView(catalog.NewQueryHandler(requester, nil), 2)
	ctx := context.Background()

	// act
	first, err := view.Load(ctx)
	require.NoError(t, err)
	second, err := view.NextPage(ctx)
	require.NoError(t, err)
	beyond, err := view.NextPage(ctx)
	require.NoError(t, err)
	back, err := view.PrevPage(ctx)
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 2, first.TotalPages())
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, 2, beyond.Page)
	assert.Equal(t, 1, back.Page)
	assert.Equal(t, 3, requester.Count(http.MethodGet, catalog.Route))

	copies, found := view.AvailableCopies("1")
	assert.True(t, found)
	assert.Equal(t, 1, copies)

	_, found = view.AvailableCopies("2")
	assert.False(t, found)
}

func Test_ListView_GoToPage_KeepsFilters(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().On(http.MethodGet, catalog.Route,
		func(_ context.Context, req testdoubles.RequestRecord) (any, error) {
			page, _ := strconv.Atoi(req.Query.Get("page"))
			return pageOf(9, page, 2, bookRow("7", 1)), nil
		})
	view := catalog.NewListView(catalog.NewQueryHandler(requester, nil), 2)
	view.SetFilters("dark", "", "")

	// act
	result, err := view.GoToPage(context.Background(), 3)
	clamped, clampedErr := view.GoToPage(context.Background(), -4)

	// assert
	require.NoError(t, err)
	require.NoError(t, clampedErr)
	assert.Equal(t, 3, result.Page)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, 1, view.Query().Page)

	last, found := requester.Last(http.MethodGet, catalog.Route)
	require.True(t, found)
	assert.Equal(t, "dark", last.Query.Get("search"))
}

func Test_ListView_Refresh_RequeriesCurrentPage(t *testing.T) {
	// arrange
	available := 2
	requester := testdoubles.NewRequesterSpy().On(http.MethodGet, catalog.Route,
		func(context.Context, testdoubles.RequestRecord) (any, error) {
			return pageOf(1, 1, 20, bookRow("42", available)), nil
		})
	view := catalog.NewListView(catalog.NewQueryHandler(requester, nil), 20)
	_, err := view.Load(context.Background())
	require.NoError(t, err)
	available = 1

	// act
	err = view.Refresh(context.Background())

	// assert
	require.NoError(t, err)
	copies, found := view.AvailableCopies("42")
	assert.True(t, found)
	assert.Equal(t, 1, copies)
}

func Test_Export_WritesCSV(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	items := []core.BookSummary{
		{Title: "Kindred, a novel", AuthorName: "Octavia Butler", CategoryName: "Fiction", ISBN: "978-1", AvailableCopies: 0, TotalCopies: 2},
	}

	// act
	err := catalog.Export(&buf, items)

	// assert
	require.NoError(t, err)
	rows, readErr := csv.NewReader(&buf).ReadAll()
	require.NoError(t, readErr)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Title", "Author", "Category", "ISBN", "Available", "Total", "Point Value", "Can Borrow"}, rows[0])
	assert.Equal(t, []string{"Kindred, a novel", "Octavia Butler", "Fiction", "978-1", "0", "2", "0.00", "false"}, rows[1])
}

func Test_ListView_ExportAll_PagesThroughFilteredResult(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().On(http.MethodGet, catalog.Route,
		func(_ context.Context, req testdoubles.RequestRecord) (any, error) {
			page, _ := strconv.Atoi(req.Query.Get("page"))
			return pageOf(3, page, 2, bookRow(strconv.Itoa(page*10), 1)), nil
		})
	view := catalog.NewListView(catalog.NewQueryHandler(requester, nil), 2)
	view.SetFilters("", "c1", "")

	var buf bytes.Buffer

	// act
	err := view.ExportAll(context.Background(), &buf)

	// assert
	require.NoError(t, err)
	rows, readErr := csv.NewReader(&buf).ReadAll()
	require.NoError(t, readErr)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Book 10", rows[1][0])
	assert.Equal(t, "12.50", rows[1][6])
	assert.Equal(t, "Book 20", rows[2][0])

	for _, req := range requester.Requests() {
		assert.Equal(t, "c1", req.Query.Get("category"))
	}
}

func Test_CanManageBooks(t *testing.T) {
	assert.True(t, catalog.CanManageBooks(apiclient.Profile{Role: "librarian"}))
	assert.False(t, catalog.CanManageBooks(apiclient.Profile{Role: "member"}))
}
