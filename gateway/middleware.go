package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	bearerPrefix        = "Bearer "

	// RequestDurationMetric tracks request latency by method, route and status code.
	RequestDurationMetric = "gateway_request_duration_seconds"

	// RequestsMetric counts requests by method, route and status code.
	RequestsMetric = "gateway_requests_total"

	// SpanNameRequest is the span name of one served request.
	SpanNameRequest = "gateway.request"

	logMsgRequestServed = "request served"
	logMsgRequestFailed = "request failed"
	logMsgPanic         = "handler panicked"

	logAttrMethod     = "method"
	logAttrRoute      = "route"
	logAttrStatusCode = "status_code"
	logAttrDurationMS = "duration_ms"
	logAttrRequestID  = "request_id"
	logAttrUserID     = "user_id"
	logAttrError      = "error"

	routeUnmatched = "unmatched"
	spanStatusOK   = "success"
	spanStatusErr  = "error"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe assigns a request id, recovers panics and records logs, metrics and a span per request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)

		ctx := r.Context()
		var span spanFinisher
		if s.tracing != nil {
			spanCtx, sc := s.tracing.StartSpan(ctx, SpanNameRequest, map[string]string{
				logAttrMethod:    r.Method,
				logAttrRequestID: requestID,
			})
			ctx = spanCtx
			span = func(status string, attrs map[string]string) { s.tracing.FinishSpan(sc, status, attrs) }
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctx)

		defer func() {
			if recovered := recover(); recovered != nil {
				s.logError(ctx, logMsgPanic, logAttrError, fmt.Sprint(recovered), logAttrRequestID, requestID)
				writeEnvelope(rec, http.StatusInternalServerError, envelope{Message: msgInternalServerError})
			}

			s.record(ctx, r, rec.status, requestID, time.Since(start), span)
		}()

		next.ServeHTTP(rec, r)
	})
}

type spanFinisher func(status string, attrs map[string]string)

func (s *Server) record(ctx context.Context, r *http.Request, status int, requestID string, duration time.Duration, span spanFinisher) {
	route := r.Pattern
	if route == "" {
		route = routeUnmatched
	}

	labels := map[string]string{
		logAttrMethod:     r.Method,
		logAttrRoute:      route,
		logAttrStatusCode: strconv.Itoa(status),
	}

	if s.metrics != nil {
		s.metrics.RecordDuration(RequestDurationMetric, duration, labels)
		s.metrics.IncrementCounter(RequestsMetric, labels)
	}

	if span != nil {
		spanStatus := spanStatusOK
		if status >= http.StatusInternalServerError {
			spanStatus = spanStatusErr
		}
		span(spanStatus, labels)
	}

	args := []any{
		logAttrMethod, r.Method,
		logAttrRoute, route,
		logAttrStatusCode, status,
		logAttrDurationMS, float64(duration.Microseconds()) / 1000.0,
		logAttrRequestID, requestID,
	}

	if status >= http.StatusInternalServerError {
		s.logError(ctx, logMsgRequestFailed, args...)
		return
	}

	s.logDebug(ctx, logMsgRequestServed, args...)
}

type claimsHandler func(w http.ResponseWriter, r *http.Request, claims Claims)

// authenticated rejects requests without a valid bearer token with 401 SESSION_EXPIRED.
func (s *Server) authenticated(next claimsHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(headerAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			writeSessionExpired(w)
			return
		}

		claims, err := s.tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			writeSessionExpired(w)
			return
		}

		next(w, r, claims)
	})
}

// managersOnly rejects members with 403 ACCESS_DENIED.
func (s *Server) managersOnly(next claimsHandler) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, claims Claims) {
		if !CanManage(claims.Role) {
			writeAccessDenied(w)
			return
		}

		next(w, r, claims)
	}
}

// mayActFor reports whether claims may read or change data of userID.
func mayActFor(claims Claims, userID string) bool {
	return claims.Subject == userID || CanManage(claims.Role)
}

func (s *Server) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Server) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Server) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
