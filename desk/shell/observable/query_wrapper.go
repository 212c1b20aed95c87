package observable

import (
	"context"

	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// QueryWrapper reports every Handle call of a query handler as a desk operation.
type QueryWrapper[Q shell.Query, R any] struct {
	handler   shell.QueryHandler[Q, R]
	queryType string
	instr     shell.Instrumentation
}

// NewQueryWrapper wraps handler. The operation name is the QueryType of Q's zero value.
func NewQueryWrapper[Q shell.Query, R any](handler shell.QueryHandler[Q, R], opts ...QueryOption[Q, R]) (*QueryWrapper[Q, R], error) {
	var zero Q

	w := &QueryWrapper[Q, R]{handler: handler, queryType: zero.QueryType()}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	ctx, obs := w.instr.Begin(ctx, shell.OperationQuery, w.queryType)

	result, err := w.handler.Handle(ctx, query)
	obs.End(ctx, err)

	return result, err
}

// QueryOption configures a QueryWrapper.
type QueryOption[Q shell.Query, R any] func(*QueryWrapper[Q, R]) error

func WithQueryMetrics[Q shell.Query, R any](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.instr.Metrics = collector
		return nil
	}
}

func WithQueryTracing[Q shell.Query, R any](collector shell.TracingCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.instr.Tracing = collector
		return nil
	}
}

func WithQueryContextualLogging[Q shell.Query, R any](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.instr.ContextualLogger = logger
		return nil
	}
}

func WithQueryLogging[Q shell.Query, R any](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.instr.Logger = logger
		return nil
	}
}
