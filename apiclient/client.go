package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	mimeJSON            = "application/json"

	pathLogin = "/auth/login"
)

// Request describes one backend call.
// Route is a low-cardinality name for telemetry (e.g. "/borrow-records/{id}"); it defaults to Path.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Route  string
}

func (r Request) route() string {
	if r.Route != "" {
		return r.Route
	}

	return r.Path
}

// Client is the single HTTP entry point to the backend.
// It attaches the bearer credential from its SessionStore, decodes the response envelope,
// classifies failures into APIError kinds, and handles session expiry globally.
// It never retries.
type Client struct {
	baseURL          *url.URL
	httpClient       *http.Client
	timeout          time.Duration
	sessions         SessionStore
	onSessionExpired SessionExpiredHandler
	userAgent        string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		sessions:   NewMemorySessionStore(),
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Do sends the request and decodes the envelope's data into out (which may be nil).
//
// It returns ErrSessionExpired when the backend rejected the credential (the session is cleared
// and the session-expired handler was notified), an *APIError for every other failure, or nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	requestID := uuid.NewString()
	route := req.route()
	start := time.Now()

	ctx, span := c.startSpan(ctx, req.Method, route, requestID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.buildRequest(ctx, req, requestID)
	if err != nil {
		c.finishSpan(span, StatusError, 0, time.Since(start), err)
		return err
	}

	c.logDebug(ctx, logMsgRequestStarted, logAttrMethod, req.Method, logAttrRoute, route, logAttrRequestID, requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		apiErr := newNetworkError(err)
		c.observeFailure(ctx, span, req.Method, route, StatusNetwork, 0, time.Since(start), apiErr)

		return apiErr
	}
	defer closeBody(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		apiErr := newNetworkError(err)
		c.observeFailure(ctx, span, req.Method, route, StatusNetwork, resp.StatusCode, time.Since(start), apiErr)

		return apiErr
	}

	env, decodeErr := decodeEnvelope(body)
	if decodeErr != nil {
		var apiErr *APIError
		if isSuccessStatus(resp.StatusCode) {
			apiErr = newMalformedResponseError(resp.StatusCode, decodeErr)
		} else {
			apiErr = classifyFailure(resp.StatusCode, envelope{Message: http.StatusText(resp.StatusCode)}, errorDetails{})
		}
		c.observeFailure(ctx, span, req.Method, route, StatusError, resp.StatusCode, time.Since(start), apiErr)

		return apiErr
	}

	if isSuccessStatus(resp.StatusCode) && env.StatusType {
		if err := env.decodeData(out); err != nil {
			apiErr := newMalformedResponseError(resp.StatusCode, err)
			c.observeFailure(ctx, span, req.Method, route, StatusError, resp.StatusCode, time.Since(start), apiErr)

			return apiErr
		}

		duration := time.Since(start)
		c.recordRequest(ctx, req.Method, route, StatusSuccess, resp.StatusCode, duration)
		c.finishSpan(span, StatusSuccess, resp.StatusCode, duration, nil)
		c.logDebug(ctx, logMsgRequestCompleted,
			logAttrMethod, req.Method,
			logAttrRoute, route,
			logAttrHTTPStatus, resp.StatusCode,
			logAttrDurationMS, toMilliseconds(duration),
		)

		return nil
	}

	details := env.errorDetails()

	if isSessionExpiry(resp.StatusCode, env, details) {
		c.expireSession(ctx)

		duration := time.Since(start)
		c.recordRequest(ctx, req.Method, route, StatusSessionExpired, resp.StatusCode, duration)
		c.finishSpan(span, StatusSessionExpired, resp.StatusCode, duration, ErrSessionExpired)

		return ErrSessionExpired
	}

	apiErr := classifyFailure(resp.StatusCode, env, details)
	c.observeFailure(ctx, span, req.Method, route, StatusError, resp.StatusCode, time.Since(start), apiErr)

	return apiErr
}

// Get sends a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Session returns the current session, if one is established.
func (c *Client) Session() (Session, bool) {
	session, err := c.sessions.Load()
	if err != nil {
		return Session{}, false
	}

	return session, true
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// Login exchanges credentials for a bearer token and establishes the session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp loginResponse

	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body:   loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return Session{}, err
	}

	if resp.Token == "" {
		return Session{}, newMalformedResponseError(http.StatusOK, errors.New("login response has no token"))
	}

	var profile Profile
	if resp.User != nil && resp.User.ID != "" {
		profile = *resp.User
	} else {
		profile, err = ProfileFromToken(resp.Token)
		if err != nil {
			return Session{}, err
		}
	}

	session := Session{Token: resp.Token, Profile: profile}
	if err := c.sessions.Save(session); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	c.logInfo(ctx, logMsgLoggedIn, logAttrUserID, profile.ID)

	return session, nil
}

// Logout clears the session. It does not notify the session-expired handler.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	c.logInfo(ctx, logMsgLoggedOut)

	return nil
}

func (c *Client) buildRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	var body io.Reader

	if req.Body != nil {
		raw, err := jsonAPI.Marshal(req.Body)
		if err != nil {
			return nil, errors.Join(ErrEncodingRequestFailed, err)
		}

		body = bytes.NewReader(raw)
	}

	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, errors.Join(ErrBuildingRequestFailed, err)
	}

	httpReq.Header.Set(headerAccept, mimeJSON)
	httpReq.Header.Set(headerRequestID, requestID)

	if body != nil {
		httpReq.Header.Set(headerContentType, mimeJSON)
	}

	if c.userAgent != "" {
		httpReq.Header.Set(headerUserAgent, c.userAgent)
	}

	session, err := c.sessions.Load()
	switch {
	case err == nil && session.Token != "":
		httpReq.Header.Set(headerAuthorization, "Bearer "+session.Token)
	case err != nil && !errors.Is(err, ErrNoSession):
		c.logWarn(ctx, logMsgSessionLoadError, logAttrError, err.Error())
	}

	return httpReq, nil
}

// expireSession clears the local session and fires the handler only if a session was present,
// so concurrent expiry responses trigger a single re-authentication.
func (c *Client) expireSession(ctx context.Context) {
	hadSession, err := c.sessions.Clear()
	if err != nil {
		c.logError(ctx, logMsgSessionClearError, logAttrError, err.Error())
	}

	if !hadSession {
		return
	}

	c.logInfo(ctx, logMsgSessionExpired)

	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func (c *Client) observeFailure(
	ctx context.Context,
	span SpanContext,
	method, route, status string,
	httpStatus int,
	duration time.Duration,
	apiErr *APIError,
) {

	c.recordRequest(ctx, method, route, status, httpStatus, duration)
	c.finishSpan(span, status, httpStatus, duration, apiErr)
	c.logError(ctx, logMsgRequestFailed,
		logAttrMethod, method,
		logAttrRoute, route,
		logAttrHTTPStatus, httpStatus,
		logAttrErrorKind, string(apiErr.Kind),
		logAttrError, apiErr.Error(),
		logAttrDurationMS, toMilliseconds(duration),
	)
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

func httpStatusLabel(status int) string {
	if status == 0 {
		return "none"
	}

	return strconv.Itoa(status)
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

func formatDurationMS(d time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(d))
}
