package gateway_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/testutil/gatewaytest"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

const memberID = "3"

type statusResponse struct {
	Status   *string  `json:"status"`
	RecordID *core.ID `json:"recordId"`
}

type bookPage struct {
	Items    []core.BookSummary `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

func borrowBody(userID, bookID, borrowDate, dueDate string) map[string]any {
	return map[string]any{
		"userId": userID, "bookId": bookID,
		"borrowDate": borrowDate, "dueDate": dueDate, "status": "borrowed",
	}
}

func requireAPIError(t *testing.T, err error) *apiclient.APIError {
	t.Helper()

	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok, "expected APIError, got %v", err)

	return apiErr
}

func availableCopies(t *testing.T, client *apiclient.Client, bookID string) int {
	t.Helper()

	var book core.BookSummary
	require.NoError(t, client.Get(context.Background(), "/books/"+bookID, nil, &book))

	return book.AvailableCopies
}

func Test_Login_IssuesTokenAndProfile(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client := env.Client(t)

	// act
	session, err := client.Login(context.Background(), gateway.DemoMemberEmail, gateway.DemoPassword)

	// assert
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, apiclient.Profile{ID: memberID, Name: "Mo Member", Email: gateway.DemoMemberEmail, Role: gateway.RoleMember}, session.Profile)

	claims, err := env.Tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, core.ID(memberID), claims.UserID())
}

func Test_Login_RejectsWrongPassword(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client := env.Client(t)

	// act
	_, err := client.Login(context.Background(), gateway.DemoMemberEmail, "wrong")

	// assert
	apiErr := requireAPIError(t, err)
	assert.Equal(t, apiclient.KindValidation, apiErr.Kind)
	assert.Equal(t, gateway.ErrInvalidCredentials.Error(), apiErr.Message)

	_, hasSession := client.Session()
	assert.False(t, hasSession)
}

func Test_BorrowAndReturn_AdjustAvailabilityAndStatus(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)
	ctx := context.Background()
	statusBody := map[string]any{"userId": memberID, "bookId": "1"}

	// act
	var before statusResponse
	require.NoError(t, client.Post(ctx, "/borrow-records/get-borrow-status", statusBody, &before))

	var record core.BorrowRecord
	require.NoError(t, client.Post(ctx, "/borrow-records/add-borrow-record", borrowBody(memberID, "1", "2024-01-20", "2024-02-03"), &record))
	copiesWhileBorrowed := availableCopies(t, client, "1")

	var during statusResponse
	require.NoError(t, client.Post(ctx, "/borrow-records/get-borrow-status", statusBody, &during))

	var loaded core.BorrowRecord
	require.NoError(t, client.Get(ctx, "/borrow-records/"+record.ID.String(), nil, &loaded))

	var returned core.BorrowRecord
	require.NoError(t, client.Post(ctx, "/borrow-records/return-borrow-record", map[string]any{
		"userId": memberID, "bookId": "1", "recordId": record.ID, "returnDate": "2024-01-25", "status": "returned",
	}, &returned))

	var after statusResponse
	require.NoError(t, client.Post(ctx, "/borrow-records/get-borrow-status", statusBody, &after))

	// assert
	assert.Nil(t, before.Status)
	assert.Nil(t, before.RecordID)

	assert.Equal(t, core.BorrowStatusBorrowed, record.Status)
	assert.Equal(t, "2024-02-03", record.DueDate.String())
	assert.Equal(t, 1, copiesWhileBorrowed)

	require.NotNil(t, during.Status)
	assert.Equal(t, "borrowed", *during.Status)
	assert.Equal(t, record.ID, *during.RecordID)
	assert.Equal(t, record, loaded)

	assert.Equal(t, core.BorrowStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "2024-01-25", returned.ReturnDate.String())

	require.NotNil(t, after.Status)
	assert.Equal(t, "returned", *after.Status)
	assert.Equal(t, 2, availableCopies(t, client, "1"))
}

func Test_AddBorrowRecord_RejectsDomainConflicts(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)
	ctx := context.Background()
	require.NoError(t, client.Post(ctx, "/borrow-records/add-borrow-record", borrowBody(memberID, "1", "2024-01-20", "2024-02-03"), nil))

	testCases := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{name: "second active borrow", body: borrowBody(memberID, "1", "2024-01-21", "2024-02-04"), wantCode: gateway.CodeAlreadyBorrowed},
		{name: "no copies available", body: borrowBody(memberID, "3", "2024-01-21", "2024-02-04"), wantCode: gateway.CodeNoCopiesAvailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := client.Post(ctx, "/borrow-records/add-borrow-record", tc.body, nil)

			// assert
			apiErr := requireAPIError(t, err)
			assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus)
			assert.Equal(t, tc.wantCode, apiErr.Code)
			assert.Equal(t, apiclient.KindValidation, apiErr.Kind)
		})
	}
}

func Test_AddBorrowRecord_ReportsFieldErrors(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)

	// act
	err := client.Post(context.Background(), "/borrow-records/add-borrow-record", borrowBody(memberID, "1", "2024-01-20", "2024-01-20"), nil)

	// assert
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	require.Len(t, apiErr.FieldErrors, 1)
	assert.Equal(t, "dueDate", apiErr.FieldErrors[0].Path)
	assert.Equal(t, 2, availableCopies(t, client, "1"))
}

func Test_ReturnBorrowRecord_RejectsInactiveRecord(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)
	ctx := context.Background()

	var record core.BorrowRecord
	require.NoError(t, client.Post(ctx, "/borrow-records/add-borrow-record", borrowBody(memberID, "2", "2024-01-20", "2024-02-03"), &record))

	returnBody := map[string]any{"userId": memberID, "bookId": "2", "recordId": record.ID, "returnDate": "2024-01-22", "status": "returned"}
	require.NoError(t, client.Post(ctx, "/borrow-records/return-borrow-record", returnBody, nil))

	// act
	err := client.Post(ctx, "/borrow-records/return-borrow-record", returnBody, nil)

	// assert
	apiErr := requireAPIError(t, err)
	assert.Equal(t, gateway.CodeRecordNotActive, apiErr.Code)
	assert.Equal(t, 1, availableCopies(t, client, "2"))
}

func Test_BorrowRecord_UnknownIDIsNotFound(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)

	// act
	err := client.Get(context.Background(), "/borrow-records/does-not-exist", nil, nil)

	// assert
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, gateway.CodeRecordNotFound, requireAPIError(t, err).Code)
}

func Test_Members_CannotActForOtherUsers(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoMemberEmail)

	// act
	err := client.Post(context.Background(), "/borrow-records/add-borrow-record", borrowBody("4", "1", "2024-01-20", "2024-02-03"), nil)

	// assert
	assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	assert.Equal(t, 2, availableCopies(t, client, "1"))
}

func Test_ExpiredToken_ExpiresTheClientSession(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	store := apiclient.NewMemorySessionStore()
	require.NoError(t, store.Save(apiclient.Session{
		Token:   env.ExpiredToken(t, gateway.DemoMemberEmail),
		Profile: apiclient.Profile{ID: memberID},
	}))

	expired := 0
	client := env.Client(t,
		apiclient.WithSessionStore(store),
		apiclient.WithSessionExpiredHandler(func() { expired++ }),
	)

	// act
	err := client.Get(context.Background(), "/books", nil, nil)

	// assert
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.Equal(t, 1, expired)

	_, loadErr := store.Load()
	assert.ErrorIs(t, loadErr, apiclient.ErrNoSession)
}

func Test_ListBooks_FiltersAndPaginates(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	client, _ := env.LoginClient(t, gateway.DemoReaderEmail)
	ctx := context.Background()

	// act
	var searched bookPage
	require.NoError(t, client.Get(ctx, "/books", url.Values{"search": {"the"}}, &searched))

	var byAuthor bookPage
	require.NoError(t, client.Get(ctx, "/books", url.Values{"author": {"1"}, "page": {"2"}, "pageSize": {"1"}}, &byAuthor))

	// assert
	require.Len(t, searched.Items, 2)
	assert.Equal(t, "The Dispossessed", searched.Items[0].Title)
	assert.Equal(t, "The Left Hand of Darkness", searched.Items[1].Title)
	assert.Equal(t, 2, searched.Total)

	assert.Equal(t, 2, byAuthor.Total)
	assert.Equal(t, 2, byAuthor.Page)
	require.Len(t, byAuthor.Items, 1)
	assert.Equal(t, "The Left Hand of Darkness", byAuthor.Items[0].Title)
}

func Test_DirectoryMutations_RequireManagerRole(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	member, _ := env.LoginClient(t, gateway.DemoMemberEmail)
	librarian, _ := env.LoginClient(t, gateway.DemoLibrarianEmail)
	ctx := context.Background()

	// act
	memberErr := member.Post(ctx, "/authors", map[string]any{"name": "Stanisław Lem"}, nil)

	var created map[string]any
	librarianErr := librarian.Post(ctx, "/authors", map[string]any{"name": "Stanisław Lem"}, &created)

	var listed struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	listErr := member.Get(ctx, "/authors", url.Values{"name": {"lem"}}, &listed)

	// assert
	assert.ErrorIs(t, memberErr, apiclient.ErrAuthorization)
	require.NoError(t, librarianErr)
	assert.NotEmpty(t, created["id"])

	require.NoError(t, listErr)
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, "Stanisław Lem", listed.Items[0]["name"])
}

func Test_CreatedUser_CanLogIn(t *testing.T) {
	// arrange
	env := gatewaytest.Start(t)
	admin, _ := env.LoginClient(t, gateway.DemoAdminEmail)
	ctx := context.Background()

	var created map[string]any
	require.NoError(t, admin.Post(ctx, "/users", map[string]any{
		"name": "Kim New", "email": "kim@library.test", "role": gateway.RoleMember, "password": "kims-password",
	}, &created))

	// act
	session, err := env.Client(t).Login(ctx, "kim@library.test", "kims-password")

	// assert
	require.NoError(t, err)
	assert.Equal(t, created["id"], session.Profile.ID)
	assert.NotContains(t, created, "password")

	duplicateErr := admin.Post(ctx, "/users", map[string]any{"name": "Kim Again", "email": "KIM@library.test"}, nil)
	apiErr := requireAPIError(t, duplicateErr)
	require.Len(t, apiErr.FieldErrors, 1)
	assert.Equal(t, "email", apiErr.FieldErrors[0].Path)
}

func Test_Handler_RecordsRequestMetricsAndServesCORS(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	env := gatewaytest.Start(t,
		gateway.WithMetrics(metrics),
		gateway.WithCORS(cors.Options{AllowedOrigins: []string{"https://desk.example"}, AllowedMethods: []string{http.MethodGet}}),
	)

	req, err := http.NewRequest(http.MethodGet, env.URL()+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://desk.example")

	// act
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://desk.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Eventually(t, func() bool {
		return metrics.HasRecord(testdoubles.MetricKindCounter, gateway.RequestsMetric, map[string]string{
			"method": http.MethodGet, "route": "GET /healthz", "status_code": "200",
		})
	}, time.Second, 5*time.Millisecond)
}
