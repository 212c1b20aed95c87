package apiclient

import (
	"net/http"
	"time"
)

// Option defines a functional option for configuring the Client.
type Option func(*Client) error

// SessionExpiredHandler is called once when a session-expiry response clears a present session.
// A UI uses it to navigate to its login entry point.
type SessionExpiredHandler func()

// WithHTTPClient sets the http.Client used for all requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}

		c.httpClient = httpClient

		return nil
	}
}

// WithTimeout sets the per-request timeout applied on top of the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}

		c.timeout = timeout

		return nil
	}
}

// WithSessionStore sets where the credential and profile are kept.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) error {
		if store == nil {
			return ErrNilSessionStore
		}

		c.sessions = store

		return nil
	}
}

// WithSessionExpiredHandler sets the callback fired when an expired session is cleared.
func WithSessionExpiredHandler(handler SessionExpiredHandler) Option {
	return func(c *Client) error {
		c.onSessionExpired = handler
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

// WithLogger sets the logger for the Client.
//
// Debug level: every request with route and duration
// Info level: session lifecycle (login, logout, expiry)
// Error level: requests that failed.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger, which takes precedence over WithLogger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for request durations and outcome counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Client) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, one span per request.
func WithTracing(collector TracingCollector) Option {
	return func(c *Client) error {
		c.tracingCollector = collector
		return nil
	}
}
