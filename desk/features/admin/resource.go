package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Roles allowed to mutate administrative resources.
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleMember    = "member"
)

const messageAccessDenied = "access denied"

// SessionProvider exposes the current session. *apiclient.Client satisfies it.
type SessionProvider interface {
	Session() (apiclient.Session, bool)
}

// Filters are collection specific query parameters, e.g. "search" or "role".
type Filters map[string]string

// ListResult is one page of a collection.
type ListResult[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// CanManage reports whether profile may create, update or delete administrative resources.
func CanManage(profile apiclient.Profile) bool {
	return profile.Role == RoleAdmin || profile.Role == RoleLibrarian
}

// Resource is the CRUD contract of one backend collection.
type Resource[T any] struct {
	requester  shell.ResourceRequester
	session    SessionProvider
	collection string
}

// NewResource binds a Resource to a collection path such as "/authors".
func NewResource[T any](requester shell.ResourceRequester, session SessionProvider, collection string) *Resource[T] {
	return &Resource[T]{requester: requester, session: session, collection: collection}
}

func Users(requester shell.ResourceRequester, session SessionProvider) *Resource[User] {
	return NewResource[User](requester, session, CollectionUsers)
}

func Roles(requester shell.ResourceRequester, session SessionProvider) *Resource[Role] {
	return NewResource[Role](requester, session, CollectionRoles)
}

func Authors(requester shell.ResourceRequester, session SessionProvider) *Resource[Author] {
	return NewResource[Author](requester, session, CollectionAuthors)
}

func Categories(requester shell.ResourceRequester, session SessionProvider) *Resource[Category] {
	return NewResource[Category](requester, session, CollectionCategories)
}

func Penalties(requester shell.ResourceRequester, session SessionProvider) *Resource[Penalty] {
	return NewResource[Penalty](requester, session, CollectionPenalties)
}

func Reservations(requester shell.ResourceRequester, session SessionProvider) *Resource[Reservation] {
	return NewResource[Reservation](requester, session, CollectionReservations)
}

func Books(requester shell.ResourceRequester, session SessionProvider) *Resource[core.BookSummary] {
	return NewResource[core.BookSummary](requester, session, CollectionBooks)
}

// Collection returns the bound collection path.
func (r *Resource[T]) Collection() string {
	return r.collection
}

// List fetches one page of the collection. Page and pageSize below 1 are omitted.
func (r *Resource[T]) List(ctx context.Context, page, pageSize int, filters Filters) (ListResult[T], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	for key, value := range filters {
		if value != "" {
			query.Set(key, value)
		}
	}

	var result ListResult[T]
	if err := r.requester.Get(ctx, r.collection, query, &result); err != nil {
		return ListResult[T]{}, err
	}

	return result, nil
}

// GetByID fetches one item.
func (r *Resource[T]) GetByID(ctx context.Context, id core.ID) (T, error) {
	var item T
	if err := r.requester.Get(ctx, r.itemPath(id), nil, &item); err != nil {
		var zero T
		return zero, err
	}

	return item, nil
}

// Create adds an item and returns it as stored by the backend.
func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	if err := r.authorize(); err != nil {
		return created, err
	}

	if err := r.requester.Post(ctx, r.collection, item, &created); err != nil {
		var zero T
		return zero, err
	}

	return created, nil
}

// Update replaces an item and returns it as stored by the backend.
func (r *Resource[T]) Update(ctx context.Context, id core.ID, item T) (T, error) {
	var updated T
	if err := r.authorize(); err != nil {
		return updated, err
	}

	if err := r.requester.Put(ctx, r.itemPath(id), item, &updated); err != nil {
		var zero T
		return zero, err
	}

	return updated, nil
}

// Delete removes an item.
func (r *Resource[T]) Delete(ctx context.Context, id core.ID) error {
	if err := r.authorize(); err != nil {
		return err
	}

	return r.requester.Delete(ctx, r.itemPath(id), nil)
}

func (r *Resource[T]) itemPath(id core.ID) string {
	return r.collection + "/" + url.PathEscape(id.String())
}

// authorize fails with an authorization APIError, joined with shell.ErrNotPermitted,
// when the session role may not mutate.
func (r *Resource[T]) authorize() error {
	session, ok := r.session.Session()
	if ok && CanManage(session.Profile) {
		return nil
	}

	return errors.Join(shell.ErrNotPermitted, apiclient.NewAPIError(apiclient.KindAuthorization, http.StatusForbidden, messageAccessDenied))
}
