package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// OperationKind separates mutations from reads in metrics, spans and logs.
type OperationKind string

const (
	OperationCommand OperationKind = "command"
	OperationQuery   OperationKind = "query"
)

const (
	// OperationDurationMetric is the duration of one desk operation in seconds.
	OperationDurationMetric = "desk_operation_duration_seconds"

	// OperationCallsMetric counts desk operations by kind, name and status.
	OperationCallsMetric = "desk_operation_calls_total"

	// OperationIncompleteMetric counts operations that ended without a backend answer:
	// rejected locally, canceled, timed out or cut short by session expiry.
	OperationIncompleteMetric = "desk_operation_incomplete_total"
)

const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusRejected       = "rejected"
	StatusCanceled       = "canceled"
	StatusTimeout        = "timeout"
	StatusSessionExpired = "session_expired"
)

const (
	LogMsgOperationStarted   = "desk operation started"
	LogMsgOperationCompleted = "desk operation completed"
	LogMsgOperationRejected  = "desk operation rejected locally"
	LogMsgOperationFailed    = "desk operation failed"

	LogAttrOperationKind = "operation_kind"
	LogAttrOperation     = "operation"
	LogAttrStatus        = "status"
	LogAttrDurationMS    = "duration_ms"
	LogAttrError         = "error"
	LogAttrErrorKind     = "error_kind"
	LogAttrUserID        = "user_id"
	LogAttrBookID        = "book_id"
	LogAttrRecordID      = "record_id"
	LogAttrState         = "state"
)

// Span names per operation kind.
const (
	SpanNameCommand = "desk.command"
	SpanNameQuery   = "desk.query"
)

// Aliases so feature slices do not need to import apiclient for observability.
type (
	MetricsCollector           = apiclient.MetricsCollector
	ContextualMetricsCollector = apiclient.ContextualMetricsCollector
	TracingCollector           = apiclient.TracingCollector
	SpanContext                = apiclient.SpanContext
	ContextualLogger           = apiclient.ContextualLogger
	Logger                     = apiclient.Logger
)

// Instrumentation is the set of collectors a desk operation reports to.
// Every field is optional; the zero value reports nothing.
// ContextualLogger is preferred over Logger when both are set.
type Instrumentation struct {
	Metrics          MetricsCollector
	Tracing          TracingCollector
	ContextualLogger ContextualLogger
	Logger           Logger
}

// OperationLabels are the metric labels of one operation outcome.
func OperationLabels(kind OperationKind, name, status string) map[string]string {
	return map[string]string{
		LogAttrOperationKind: string(kind),
		LogAttrOperation:     name,
		LogAttrStatus:        status,
	}
}

// StatusForError classifies an operation error into one of the Status constants.
func StatusForError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsRejectedLocallyError(err):
		return StatusRejected
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsSessionExpiredError(err):
		return StatusSessionExpired
	default:
		return StatusError
	}
}

// Observation is one running operation, created by Instrumentation.Begin.
type Observation struct {
	in    Instrumentation
	kind  OperationKind
	name  string
	start time.Time
	span  SpanContext
}

// Begin opens a span for the operation and logs its start.
// The returned context carries the span and must be passed to the observed handler.
func (in Instrumentation) Begin(ctx context.Context, kind OperationKind, name string) (context.Context, *Observation) {
	obs := &Observation{in: in, kind: kind, name: name, start: time.Now()}

	if in.Tracing != nil {
		spanName := SpanNameQuery
		if kind == OperationCommand {
			spanName = SpanNameCommand
		}

		ctx, obs.span = in.Tracing.StartSpan(ctx, spanName, map[string]string{
			LogAttrOperationKind: string(kind),
			LogAttrOperation:     name,
		})
	}

	obs.log(ctx, levelDebug, LogMsgOperationStarted)

	return ctx, obs
}

// End records the outcome of the operation and returns its status.
//
//   - success: info log with the duration
//   - local rejection: warning
//   - session expiry: no log, the request client already reported it
//   - anything else: error log with the backend error kind when known
func (o *Observation) End(ctx context.Context, err error) string {
	duration := time.Since(o.start)
	status := StatusForError(err)

	o.recordMetrics(ctx, status, duration)
	o.finishSpan(status, duration, err)

	switch status {
	case StatusSuccess:
		o.log(ctx, levelInfo, LogMsgOperationCompleted, LogAttrDurationMS, toMilliseconds(duration))
	case StatusRejected:
		o.log(ctx, levelWarn, LogMsgOperationRejected, LogAttrError, err.Error())
	case StatusSessionExpired:
	default:
		o.log(ctx, levelError, LogMsgOperationFailed, errorArgs(err)...)
	}

	return status
}

func (o *Observation) recordMetrics(ctx context.Context, status string, duration time.Duration) {
	collector := o.in.Metrics
	if collector == nil {
		return
	}

	labels := OperationLabels(o.kind, o.name, status)
	contextual, isContextual := collector.(ContextualMetricsCollector)

	count := func(metric string) {
		if isContextual {
			contextual.IncrementCounterContext(ctx, metric, labels)
		} else {
			collector.IncrementCounter(metric, labels)
		}
	}

	if isContextual {
		contextual.RecordDurationContext(ctx, OperationDurationMetric, duration, labels)
	} else {
		collector.RecordDuration(OperationDurationMetric, duration, labels)
	}

	count(OperationCallsMetric)

	if status != StatusSuccess && status != StatusError {
		count(OperationIncompleteMetric)
	}
}

func (o *Observation) finishSpan(status string, duration time.Duration, err error) {
	if o.in.Tracing == nil || o.span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
		if apiErr, ok := apiclient.AsAPIError(err); ok {
			attrs[LogAttrErrorKind] = string(apiErr.Kind)
		}
	}

	o.in.Tracing.FinishSpan(o.span, status, attrs)
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func (o *Observation) log(ctx context.Context, level logLevel, msg string, args ...any) {
	args = append([]any{LogAttrOperationKind, string(o.kind), LogAttrOperation, o.name}, args...)

	if l := o.in.ContextualLogger; l != nil {
		switch level {
		case levelDebug:
			l.DebugContext(ctx, msg, args...)
		case levelInfo:
			l.InfoContext(ctx, msg, args...)
		case levelWarn:
			l.WarnContext(ctx, msg, args...)
		default:
			l.ErrorContext(ctx, msg, args...)
		}

		return
	}

	if l := o.in.Logger; l != nil {
		switch level {
		case levelDebug:
			l.Debug(msg, args...)
		case levelInfo:
			l.Info(msg, args...)
		case levelWarn:
			l.Warn(msg, args...)
		default:
			l.Error(msg, args...)
		}
	}
}

func errorArgs(err error) []any {
	args := []any{LogAttrError, err.Error()}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		args = append(args, LogAttrErrorKind, string(apiErr.Kind))
	}

	return args
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// IsCancellationError reports whether err stems from context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether err stems from an exceeded deadline.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsSessionExpiredError reports whether the backend rejected the session.
func IsSessionExpiredError(err error) bool {
	return errors.Is(err, apiclient.ErrSessionExpired)
}

// IsRejectedLocallyError reports whether a command failed validation before any request was sent.
func IsRejectedLocallyError(err error) bool {
	return errors.Is(err, ErrRejectedLocally)
}
