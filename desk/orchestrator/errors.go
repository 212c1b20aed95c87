package orchestrator

import "errors"

var (
	// ErrSubmissionInFlight is returned for any action while a borrow or return request is outstanding.
	// Such calls are inert: no request is made and the state is unchanged.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrResolutionInFlight is returned for any action while the relation or the borrow record is being loaded.
	ErrResolutionInFlight = errors.New("a lookup is already in flight")

	// ErrViewClosed is returned by every method after Close, and when a response arrives after Close.
	ErrViewClosed = errors.New("book detail view is closed")

	// ErrInvalidTransition is returned when an action does not apply to the current state.
	ErrInvalidTransition = errors.New("action not possible in current state")

	// ErrActionNotAvailable is returned when the affordance does not offer the requested action.
	ErrActionNotAvailable = errors.New("action not available for this book")

	// ErrMissingPort is returned by NewBookDetailView when a required port is nil.
	ErrMissingPort = errors.New("resolver, records, borrow and return ports are required")

	// ErrMissingUser is returned by NewBookDetailView without a user id.
	ErrMissingUser = errors.New("user id is required")

	// ErrMissingBook is returned by NewBookDetailView without a book id.
	ErrMissingBook = errors.New("book id is required")
)
