package resolvestatus

import (
	"context"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

const logMsgResolveFailed = "borrow status could not be resolved, assuming none"

// Resolver resolves borrow relations for the detail view.
// It never fails; every error degrades to core.NoRelation().
type Resolver struct {
	handler          shell.QueryHandler[Query, core.BorrowRelation]
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the basic logger used for degraded lookups.
func WithLogger(logger shell.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithContextualLogger sets the contextual logger used for degraded lookups.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(r *Resolver) {
		r.contextualLogger = logger
	}
}

// NewResolver creates a Resolver on top of a (possibly observable-wrapped) query handler.
func NewResolver(handler shell.QueryHandler[Query, core.BorrowRelation], opts ...Option) *Resolver {
	r := &Resolver{handler: handler}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the relation of userID to bookID. Without a user no request is made.
func (r *Resolver) Resolve(ctx context.Context, userID, bookID core.ID) core.BorrowRelation {
	if userID.IsZero() || bookID.IsZero() {
		return core.NoRelation()
	}

	relation, err := r.handler.Handle(ctx, BuildQuery(userID, bookID))
	if err == nil {
		return relation
	}

	if !shell.IsSessionExpiredError(err) {
		r.warn(ctx, err, userID, bookID)
	}

	return core.NoRelation()
}

func (r *Resolver) warn(ctx context.Context, err error, userID, bookID core.ID) {
	args := []any{
		shell.LogAttrUserID, userID.String(),
		shell.LogAttrBookID, bookID.String(),
		shell.LogAttrError, err.Error(),
	}

	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, logMsgResolveFailed, args...)
	} else if r.logger != nil {
		r.logger.Warn(logMsgResolveFailed, args...)
	}
}
