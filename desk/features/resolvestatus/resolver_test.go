package resolvestatus_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/resolvestatus"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

func Test_QueryHandler_Handle_MapsBackendAnswer(t *testing.T) {
	testCases := []struct {
		name string
		data map[string]any
		want core.BorrowRelation
	}{
		{
			name: "borrowed with numeric record id",
			data: map[string]any{"status": "borrowed", "recordId": 77},
			want: core.BorrowRelation{Status: core.BorrowStatusBorrowed, RecordID: "77"},
		},
		{
			name: "returned",
			data: map[string]any{"status": "returned", "recordId": "r-1"},
			want: core.BorrowRelation{Status: core.BorrowStatusReturned, RecordID: "r-1"},
		},
		{
			name: "no record",
			data: map[string]any{"status": nil, "recordId": nil},
			want: core.NoRelation(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			requester := testdoubles.NewRequesterSpy().RespondWith(http.MethodPost, resolvestatus.Route, tc.data)
			handler := resolvestatus.NewQueryHandler(requester)

			// act
			relation, err := handler.Handle(context.Background(), resolvestatus.BuildQuery("5", "42"))

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.want, relation)

			req, found := requester.Last(http.MethodPost, resolvestatus.Route)
			require.True(t, found)
			assert.JSONEq(t, `{"userId":"5","bookId":"42"}`, string(req.Body))
		})
	}
}

func Test_QueryHandler_Handle_RejectsUnknownStatus(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodPost, resolvestatus.Route, map[string]any{"status": "lost"})

	_, err := resolvestatus.NewQueryHandler(requester).Handle(context.Background(), resolvestatus.BuildQuery("5", "42"))

	assert.ErrorIs(t, err, resolvestatus.ErrUnknownStatus)
}

func Test_Resolver_Resolve_DegradesToNoRelationAndWarns(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().
		FailWith(http.MethodPost, resolvestatus.Route, apiclient.NewAPIError(apiclient.KindServer, 500, "db down"))
	logger := testdoubles.NewLoggerSpy()
	resolver := resolvestatus.NewResolver(resolvestatus.NewQueryHandler(requester), resolvestatus.WithContextualLogger(logger))

	// act
	relation := resolver.Resolve(context.Background(), "5", "42")

	// assert
	assert.Equal(t, core.NoRelation(), relation)
	require.Len(t, logger.RecordsAt(testdoubles.LevelWarn), 1)

	record := logger.RecordsAt(testdoubles.LevelWarn)[0]
	bookID, ok := record.Attr("book_id")
	require.True(t, ok)
	assert.Equal(t, "42", bookID)
}

func Test_Resolver_Resolve_UnknownStatusDegradesToNoRelation(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodPost, resolvestatus.Route, map[string]any{"status": "lost", "recordId": 1})
	logger := testdoubles.NewLoggerSpy()
	resolver := resolvestatus.NewResolver(resolvestatus.NewQueryHandler(requester), resolvestatus.WithLogger(logger))

	relation := resolver.Resolve(context.Background(), "5", "42")

	assert.Equal(t, core.NoRelation(), relation)
	assert.Len(t, logger.RecordsAt(testdoubles.LevelWarn), 1)
}

func Test_Resolver_Resolve_SessionExpiryDegradesSilently(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().FailWith(http.MethodPost, resolvestatus.Route, apiclient.ErrSessionExpired)
	logger := testdoubles.NewLoggerSpy()
	resolver := resolvestatus.NewResolver(resolvestatus.NewQueryHandler(requester), resolvestatus.WithContextualLogger(logger))

	relation := resolver.Resolve(context.Background(), "5", "42")

	assert.Equal(t, core.NoRelation(), relation)
	assert.Empty(t, logger.Records())
}

func Test_Resolver_Resolve_WithoutUserMakesNoRequest(t *testing.T) {
	requester := testdoubles.NewRequesterSpy()
	resolver := resolvestatus.NewResolver(resolvestatus.NewQueryHandler(requester))

	relation := resolver.Resolve(context.Background(), "", "42")

	assert.Equal(t, core.NoRelation(), relation)
	assert.Empty(t, requester.Requests())
}
