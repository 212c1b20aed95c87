package shell

import (
	"context"
	"net/url"
)

// Requester is the backend port used by read-only features and the borrow/return commands.
// *apiclient.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

// ResourceRequester extends Requester with the verbs needed to manage admin collections.
// *apiclient.Client satisfies it.
type ResourceRequester interface {
	Requester
	Put(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Query represents the contract for all query types of the circulation desk.
// The QueryType method enables polymorphic handling and observability instrumentation.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that fetch data from the backend.
// The generic parameters Q and R ensure type safety between queries and their corresponding results.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Command represents the contract for all mutating operations of the circulation desk.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandHandler defines the contract for components that validate a command locally
// and then submit it to the backend.
// Handlers return HandlerResult describing whether a request was sent and what the backend returned.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}
