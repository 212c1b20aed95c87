package observable

import (
	"context"

	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

// CommandWrapper reports every Handle call of a command handler as a desk operation.
type CommandWrapper[C shell.Command] struct {
	handler     shell.CommandHandler[C]
	commandType string
	instr       shell.Instrumentation
}

// NewCommandWrapper wraps handler. The operation name is the CommandType of C's zero value.
func NewCommandWrapper[C shell.Command](handler shell.CommandHandler[C], opts ...CommandOption[C]) (*CommandWrapper[C], error) {
	var zero C

	w := &CommandWrapper[C]{handler: handler, commandType: zero.CommandType()}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle delegates to the wrapped handler. The HandlerResult and error pass through unchanged.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	ctx, obs := w.instr.Begin(ctx, shell.OperationCommand, w.commandType)

	result, err := w.handler.Handle(ctx, command)
	obs.End(ctx, err)

	return result, err
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.instr.Metrics = collector
		return nil
	}
}

func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.instr.Tracing = collector
		return nil
	}
}

func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.instr.ContextualLogger = logger
		return nil
	}
}

func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.instr.Logger = logger
		return nil
	}
}
