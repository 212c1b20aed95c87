package orchestrator

import (
	"context"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/borrowbook"
	"github.com/AntonStoeckl/circulation-desk/desk/features/loadborrowrecord"
	"github.com/AntonStoeckl/circulation-desk/desk/features/returnbook"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// StatusResolver resolves the current user's relation to a book. It never fails.
type StatusResolver interface {
	Resolve(ctx context.Context, userID, bookID core.ID) core.BorrowRelation
}

// CatalogRefresher is the catalog list the view refreshes after a mutation.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
	AvailableCopies(bookID core.ID) (int, bool)
}

// NoticeSink receives user-visible notices.
type NoticeSink interface {
	Notify(notice core.Notice)
}

// NoticeSinkFunc adapts a function to a NoticeSink.
type NoticeSinkFunc func(notice core.Notice)

func (f NoticeSinkFunc) Notify(notice core.Notice) { f(notice) }

// StateListener is called after every state change.
type StateListener func(state core.State)

// Ports are the handlers a BookDetailView talks through. Catalog is optional.
type Ports struct {
	Resolver StatusResolver
	Records  shell.QueryHandler[loadborrowrecord.Query, core.BorrowRecord]
	Borrow   shell.CommandHandler[borrowbook.Command]
	Return   shell.CommandHandler[returnbook.Command]
	Catalog  CatalogRefresher
}

func (p Ports) validate() error {
	if p.Resolver == nil || p.Records == nil || p.Borrow == nil || p.Return == nil {
		return ErrMissingPort
	}

	return nil
}
