package admin_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

type fixedSession struct {
	session apiclient.Session
	present bool
}

func (s fixedSession) Session() (apiclient.Session, bool) {
	return s.session, s.present
}

func sessionWithRole(role string) fixedSession {
	return fixedSession{
		session: apiclient.Session{Token: "t", Profile: apiclient.Profile{ID: "1", Role: role}},
		present: true,
	}
}

func Test_Resource_List_EncodesPagingAndFilters(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().RespondWith(http.MethodGet, admin.CollectionAuthors, map[string]any{
		"items":    []map[string]any{{"id": 1, "name": "Ursula K. Le Guin"}},
		"total":    1,
		"page":     2,
		"pageSize": 10,
	})
	authors := admin.Authors(requester, sessionWithRole(admin.RoleMember))

	// act
	result, err := authors.List(context.Background(), 2, 10, admin.Filters{"search": "guin", "empty": ""})

	// assert
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Ursula K. Le Guin", result.Items[0].Name)
	assert.Equal(t, 1, result.Total)

	req, found := requester.Last(http.MethodGet, admin.CollectionAuthors)
	require.True(t, found)
	assert.Equal(t, "2", req.Query.Get("page"))
	assert.Equal(t, "10", req.Query.Get("pageSize"))
	assert.Equal(t, "guin", req.Query.Get("search"))
	assert.False(t, req.Query.Has("empty"))
}

func Test_Resource_GetByID(t *testing.T) {
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodGet, "/categories/3", map[string]any{"id": "3", "name": "Science Fiction"})

	category, err := admin.Categories(requester, fixedSession{}).GetByID(context.Background(), "3")

	require.NoError(t, err)
	assert.Equal(t, admin.Category{ID: "3", Name: "Science Fiction"}, category)
}

func Test_Resource_Mutations_WithMemberRoleSendNothing(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy()
	users := admin.Users(requester, sessionWithRole(admin.RoleMember))
	ctx := context.Background()

	// act
	_, createErr := users.Create(ctx, admin.User{Name: "x"})
	_, updateErr := users.Update(ctx, "1", admin.User{Name: "y"})
	deleteErr := users.Delete(ctx, "1")

	// assert
	for _, err := range []error{createErr, updateErr, deleteErr} {
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)
		assert.ErrorIs(t, err, shell.ErrNotPermitted)

		apiErr, ok := apiclient.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)
	}
	assert.Empty(t, requester.Requests())
}

func Test_Resource_Mutations_WithoutSessionSendNothing(t *testing.T) {
	requester := testdoubles.NewRequesterSpy()

	err := admin.Penalties(requester, fixedSession{}).Delete(context.Background(), "1")

	assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	assert.Empty(t, requester.Requests())
}

func Test_Resource_Mutations_WithLibrarianRole(t *testing.T) {
	// arrange
	requester := testdoubles.NewRequesterSpy().
		RespondWith(http.MethodPost, admin.CollectionRoles, map[string]any{"id": 9, "name": "auditor"}).
		RespondWith(http.MethodPut, "/roles/9", map[string]any{"id": 9, "name": "auditor", "description": "read only"}).
		RespondWith(http.MethodDelete, "/roles/9", nil)
	roles := admin.Roles(requester, sessionWithRole(admin.RoleLibrarian))
	ctx := context.Background()

	// act
	created, createErr := roles.Create(ctx, admin.Role{Name: "auditor"})
	updated, updateErr := roles.Update(ctx, created.ID, admin.Role{Name: "auditor", Description: "read only"})
	deleteErr := roles.Delete(ctx, created.ID)

	// assert
	require.NoError(t, createErr)
	require.NoError(t, updateErr)
	require.NoError(t, deleteErr)
	assert.Equal(t, admin.Role{ID: "9", Name: "auditor"}, created)
	assert.Equal(t, "read only", updated.Description)

	req, found := requester.Last(http.MethodPost, admin.CollectionRoles)
	require.True(t, found)
	assert.JSONEq(t, `{"name":"auditor"}`, string(req.Body))
	assert.Equal(t, 1, requester.Count(http.MethodDelete, "/roles/9"))
}

func Test_CanManage(t *testing.T) {
	assert.True(t, admin.CanManage(apiclient.Profile{Role: admin.RoleAdmin}))
	assert.True(t, admin.CanManage(apiclient.Profile{Role: admin.RoleLibrarian}))
	assert.False(t, admin.CanManage(apiclient.Profile{Role: admin.RoleMember}))
	assert.False(t, admin.CanManage(apiclient.Profile{}))
}
