package apiclient

import (
	"context"
	"time"
)

const (
	// RequestDurationMetric tracks the round-trip duration of backend requests.
	RequestDurationMetric = "apiclient_request_duration_seconds"

	// RequestsMetric counts backend requests by method, route and outcome.
	RequestsMetric = "apiclient_requests_total"

	// SessionExpiredMetric counts detected session expiries.
	SessionExpiredMetric = "apiclient_session_expired_total"

	// SpanNameRequest is the tracing span name for one backend request.
	SpanNameRequest = "apiclient.request"

	// StatusSuccess marks a request that returned a successful envelope.
	StatusSuccess = "success"

	// StatusError marks a request that returned an error envelope.
	StatusError = "error"

	// StatusNetwork marks a request that never received a response.
	StatusNetwork = "network_error"

	// StatusSessionExpired marks a request rejected because the credential expired.
	StatusSessionExpired = "session_expired"

	logMsgRequestStarted    = "api request started"
	logMsgRequestCompleted  = "api request completed"
	logMsgRequestFailed     = "api request failed"
	logMsgSessionExpired    = "session expired, local session cleared"
	logMsgSessionClearError = "failed to clear session"
	logMsgSessionLoadError  = "failed to load session"
	logMsgLoggedIn          = "session established"
	logMsgLoggedOut         = "session cleared on logout"

	logAttrMethod     = "method"
	logAttrRoute      = "route"
	logAttrStatus     = "status"
	logAttrHTTPStatus = "http_status"
	logAttrRequestID  = "request_id"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"
	logAttrErrorKind  = "error_kind"
	logAttrUserID     = "user_id"
)

// Logger interface for request logging, warnings and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting request durations and outcome counters.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods for trace correlation.
// The Client uses the context-aware methods when available and falls back to the base interface otherwise.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information from backend requests.
// It is dependency-free, so any tracing backend can be plugged in by implementing it.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger interface for context-aware logging with trace correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) logInfo(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Client) logError(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}

// recordRequest records duration and outcome metrics for a finished request.
func (c *Client) recordRequest(ctx context.Context, method, route, status string, httpStatus int, duration time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		logAttrMethod:     method,
		logAttrRoute:      route,
		logAttrStatus:     status,
		logAttrHTTPStatus: httpStatusLabel(httpStatus),
	}

	if contextual, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, RequestDurationMetric, duration, labels)
		contextual.IncrementCounterContext(ctx, RequestsMetric, labels)
	} else {
		c.metricsCollector.RecordDuration(RequestDurationMetric, duration, labels)
		c.metricsCollector.IncrementCounter(RequestsMetric, labels)
	}

	if status == StatusSessionExpired {
		expiredLabels := map[string]string{logAttrRoute: route}
		if contextual, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(ctx, SessionExpiredMetric, expiredLabels)
		} else {
			c.metricsCollector.IncrementCounter(SessionExpiredMetric, expiredLabels)
		}
	}
}

func (c *Client) startSpan(ctx context.Context, method, route, requestID string) (context.Context, SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, SpanNameRequest, map[string]string{
		logAttrMethod:    method,
		logAttrRoute:     route,
		logAttrRequestID: requestID,
	})
}

func (c *Client) finishSpan(span SpanContext, status string, httpStatus int, duration time.Duration, err error) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		logAttrStatus:     status,
		logAttrHTTPStatus: httpStatusLabel(httpStatus),
		logAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[logAttrError] = err.Error()
	}

	c.tracingCollector.FinishSpan(span, status, attrs)
}
