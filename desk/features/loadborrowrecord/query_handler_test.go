package loadborrowrecord_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/loadborrowrecord"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

func Test_QueryHandler_Handle_LoadsRecord(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().RespondWith(http.MethodGet, "/borrow-records/77", map[string]any{
		"id":         77,
		"userId":     5,
		"bookId":     42,
		"borrowDate": "2024-01-01T00:00:00.000Z",
		"dueDate":    "2024-01-15",
		"status":     "borrowed",
	})
	handler := loadborrowrecord.NewQueryHandler(requester)

	// act
	record, err := handler.Handle(context.Background(), loadborrowrecord.BuildQuery("77"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.BorrowRecord{
		ID:         "77",
		UserID:     "5",
		BookID:     "42",
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2024-01-15"),
		Status:     core.BorrowStatusBorrowed,
	}, record)
}

func Test_QueryHandler_Handle_WithoutRecordIDMakesNoRequest(t *testing.T) {
	requester := testdoubles.NewRequesterSpy()

	_, err := loadborrowrecord.NewQueryHandler(requester).Handle(context.Background(), loadborrowrecord.BuildQuery(""))

	assert.ErrorIs(t, err, core.ErrMissingRecordID)
	assert.Empty(t, requester.Requests())
}

func Test_QueryHandler_Handle_PropagatesBackendFailure(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().
		FailWith(http.MethodGet, "/borrow-records/9", apiclient.NewAPIError(apiclient.KindNotFound, 404, "record not found"))

	_, err := loadborrowrecord.NewQueryHandler(requester).Handle(context.Background(), loadborrowrecord.BuildQuery("9"))

	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func Test_Route_EscapesRecordID(t *testing.T) {
	assert.Equal(t, "/borrow-records/a%2Fb", loadborrowrecord.Route("a/b"))
}
