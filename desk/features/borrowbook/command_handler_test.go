package borrowbook_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/borrowbook"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

func validForm() core.BorrowForm {
	return core.BorrowForm{
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2024-01-15"),
	}
}

func Test_CommandHandler_Handle_SubmitsBorrowRequest(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().RespondWith(http.MethodPost, borrowbook.Route, map[string]any{
		"id": 100, "userId": 5, "bookId": 42,
		"borrowDate": "2024-01-01", "dueDate": "2024-01-15", "status": "borrowed",
	})
	handler := borrowbook.NewCommandHandler(requester)

	// act
	result, err := handler.Handle(context.Background(), borrowbook.BuildCommand("5", "42", validForm()))

	// assert
	require.NoError(t, err)
	assert.True(t, result.RequestSent)
	assert.Equal(t, core.ID("100"), result.Record.ID)
	assert.Equal(t, core.BorrowStatusBorrowed, result.Record.Status)

	req, found := requester.Last(http.MethodPost, borrowbook.Route)
	require.True(t, found)
	assert.JSONEq(t,
		`{"userId":"5","bookId":"42","borrowDate":"2024-01-01","dueDate":"2024-01-15","status":"borrowed"}`,
		string(req.Body))
}

func Test_CommandHandler_Handle_RejectsInvalidPeriodWithoutRequest(t *testing.T) {
	testCases := []struct {
		name    string
		command borrowbook.Command
		wantErr error
	}{
		{
			name:    "missing due date",
			command: borrowbook.BuildCommand("5", "42", core.NewBorrowForm(core.MustParseCalendarDate("2024-01-01"))),
			wantErr: core.ErrDueDateRequired,
		},
		{
			name: "due date equals borrow date",
			command: borrowbook.BuildCommand("5", "42", core.BorrowForm{
				BorrowDate: core.MustParseCalendarDate("2024-01-01"),
				DueDate:    core.MustParseCalendarDate("2024-01-01"),
			}),
			wantErr: core.ErrDueDateNotAfterBorrowDate,
		},
		{
			name:    "missing user",
			command: borrowbook.BuildCommand("", "42", validForm()),
			wantErr: borrowbook.ErrUserIDRequired,
		},
		{
			name:    "missing book",
			command: borrowbook.BuildCommand("5", "", validForm()),
			wantErr: borrowbook.ErrBookIDRequired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			requester := testdoubles.NewRequesterSpy()

			result, err := borrowbook.NewCommandHandler(requester).Handle(context.Background(), tc.command)

			assert.ErrorIs(t, err, shell.ErrRejectedLocally)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.False(t, result.RequestSent)
			assert.Empty(t, requester.Requests())
		})
	}
}

func Test_CommandHandler_Handle_PropagatesBackendRejection(t *testing.T) {
	backendErr := apiclient.NewAPIError(apiclient.KindValidation, 409, "no copies available")
	requester := testdoubles.NewRequesterSpy().FailWith(http.MethodPost, borrowbook.Route, backendErr)

	result, err := borrowbook.NewCommandHandler(requester).Handle(context.Background(), borrowbook.BuildCommand("5", "42", validForm()))

	assert.ErrorIs(t, err, apiclient.ErrValidation)
	assert.NotErrorIs(t, err, shell.ErrRejectedLocally)
	assert.True(t, result.RequestSent)
}
