package orchestrator

import (
	"time"

	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// Option configures a BookDetailView.
type Option func(*BookDetailView)

// WithNoticeSink sets where notices are delivered. Without a sink notices are dropped.
func WithNoticeSink(sink NoticeSink) Option {
	return func(v *BookDetailView) {
		v.sink = sink
	}
}

// WithStateListener sets a listener called after every state change.
func WithStateListener(listener StateListener) Option {
	return func(v *BookDetailView) {
		v.listener = listener
	}
}

// WithClock replaces time.Now as the source of "today".
func WithClock(clock func() time.Time) Option {
	return func(v *BookDetailView) {
		v.clock = clock
	}
}

// WithLogger sets the basic logger.
func WithLogger(logger shell.Logger) Option {
	return func(v *BookDetailView) {
		v.logger = logger
	}
}

// WithContextualLogger sets the contextual logger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(v *BookDetailView) {
		v.contextualLogger = logger
	}
}
