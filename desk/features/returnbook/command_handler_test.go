package returnbook_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/returnbook"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

func overduePrompt() core.ReturnPrompt {
	record := core.BorrowRecord{
		ID:         "77",
		UserID:     "5",
		BookID:     "42",
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2024-01-15"),
		Status:     core.BorrowStatusBorrowed,
	}

	return core.NewReturnPrompt(record, core.MustParseCalendarDate("2024-01-20"), decimal.NewFromInt(10))
}

func Test_CommandHandler_Handle_OverdueWithoutAcknowledgmentSendsNothing(t *testing.T) {
	requester := testdoubles.NewRequesterSpy()

	result, err := returnbook.NewCommandHandler(requester).
		Handle(context.Background(), returnbook.BuildCommand("5", "42", overduePrompt()))

	assert.ErrorIs(t, err, shell.ErrRejectedLocally)
	assert.ErrorIs(t, err, core.ErrFineNotAcknowledged)
	assert.False(t, result.RequestSent)
	assert.Empty(t, requester.Requests())
}

func Test_CommandHandler_Handle_SubmitsAcknowledgedOverdueReturn(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().RespondWith(http.MethodPost, returnbook.Route, map[string]any{
		"id": 77, "userId": 5, "bookId": 42,
		"borrowDate": "2024-01-01", "dueDate": "2024-01-15", "returnDate": "2024-01-20", "status": "returned",
	})
	prompt := overduePrompt()
	prompt.Acknowledged = true

	// act
	result, err := returnbook.NewCommandHandler(requester).
		Handle(context.Background(), returnbook.BuildCommand("5", "42", prompt))

	// assert
	require.NoError(t, err)
	assert.True(t, result.RequestSent)
	assert.Equal(t, core.BorrowStatusReturned, result.Record.Status)
	require.NotNil(t, result.Record.ReturnDate)
	assert.Equal(t, "2024-01-20", result.Record.ReturnDate.String())

	req, found := requester.Last(http.MethodPost, returnbook.Route)
	require.True(t, found)
	assert.JSONEq(t,
		`{"userId":"5","bookId":"42","recordId":"77","returnDate":"2024-01-20","status":"returned"}`,
		string(req.Body))
}

func Test_CommandHandler_Handle_MissingRecordIDSendsNothing(t *testing.T) {
	requester := testdoubles.NewRequesterSpy()
	command := returnbook.BuildCommand("5", "42", overduePrompt())
	command.RecordID = ""

	_, err := returnbook.NewCommandHandler(requester).Handle(context.Background(), command)

	assert.ErrorIs(t, err, core.ErrMissingRecordID)
	assert.Empty(t, requester.Requests())
}

func Test_CommandHandler_Handle_PropagatesBackendRejection(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().
		FailWith(http.MethodPost, returnbook.Route, apiclient.NewAPIError(apiclient.KindValidation, 409, "record is not active"))
	prompt := overduePrompt()
	prompt.Acknowledged = true

	result, err := returnbook.NewCommandHandler(requester).Handle(context.Background(), returnbook.BuildCommand("5", "42", prompt))

	assert.ErrorIs(t, err, apiclient.ErrValidation)
	assert.True(t, result.RequestSent)
}
