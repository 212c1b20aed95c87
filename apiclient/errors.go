package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionExpired is returned when the backend rejected the credential as expired or invalid.
	// The Client has already cleared the session and notified the session-expired handler,
	// so callers should not surface it as a regular failure.
	ErrSessionExpired = errors.New("session expired")

	// ErrNetwork classifies failures where no response was received.
	ErrNetwork = errors.New("network error")

	// ErrValidation classifies 4xx rejections of the submitted input.
	ErrValidation = errors.New("validation error")

	// ErrAuthorization classifies permission failures ("access denied").
	ErrAuthorization = errors.New("authorization error")

	// ErrNotFound classifies requests for resources that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrServer classifies 5xx responses and undecodable payloads.
	ErrServer = errors.New("server error")

	// ErrEmptyBaseURL is returned by NewClient for an empty base URL.
	ErrEmptyBaseURL = errors.New("base url must not be empty")

	// ErrInvalidBaseURL is returned by NewClient for a base URL that is not absolute.
	ErrInvalidBaseURL = errors.New("base url must be an absolute http(s) url")

	// ErrNilHTTPClient is returned by WithHTTPClient for a nil client.
	ErrNilHTTPClient = errors.New("http client must not be nil")

	// ErrNilSessionStore is returned by WithSessionStore for a nil store.
	ErrNilSessionStore = errors.New("session store must not be nil")

	// ErrInvalidTimeout is returned by WithTimeout for a non-positive timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrEncodingRequestFailed is returned when the request body could not be encoded.
	ErrEncodingRequestFailed = errors.New("encoding request body failed")

	// ErrBuildingRequestFailed is returned when the http request could not be built.
	ErrBuildingRequestFailed = errors.New("building http request failed")

	// ErrNoSession is returned by operations that need an established session.
	ErrNoSession = errors.New("no session established")

	// ErrMalformedToken is returned by ProfileFromToken for tokens that cannot be parsed.
	ErrMalformedToken = errors.New("malformed token")
)

const (
	// CodeSessionExpired is the error discriminator the backend sends for expired or invalid credentials.
	CodeSessionExpired = "SESSION_EXPIRED"

	// CodeAccessDenied is the error discriminator the backend sends for permission failures.
	CodeAccessDenied = "ACCESS_DENIED"

	messageAccessDenied = "access denied"
)

// Kind is the error taxonomy used to decide how a failure is surfaced.
type Kind string

const (
	KindNetwork       Kind = "network"
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindServer        Kind = "server"
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindValidation:
		return ErrValidation
	case KindAuthorization:
		return ErrAuthorization
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}

// FieldError is one field-level validation message from an error envelope.
type FieldError struct {
	Msg  string `json:"msg"`
	Path string `json:"path,omitempty"`
}

// APIError is every non-session failure of a backend request.
// HTTPStatus is 0 when no response was received.
type APIError struct {
	HTTPStatus  int
	Message     string
	FieldErrors []FieldError
	Code        string
	Kind        Kind
	cause       error
}

// NewAPIError builds an APIError of the given kind, mainly for callers that
// reject an operation locally with the same taxonomy the backend uses.
func NewAPIError(kind Kind, httpStatus int, message string, fieldErrors ...FieldError) *APIError {
	return &APIError{
		HTTPStatus:  httpStatus,
		Message:     message,
		FieldErrors: fieldErrors,
		Kind:        kind,
	}
}

func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))
	if e.HTTPStatus != 0 {
		b.WriteString(fmt.Sprintf(" (%d)", e.HTTPStatus))
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	for _, fieldErr := range e.FieldErrors {
		b.WriteString("; ")
		b.WriteString(fieldErr.Msg)
	}

	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}

	return b.String()
}

// Unwrap exposes the kind sentinel and the underlying cause to errors.Is / errors.As.
func (e *APIError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind.sentinel()}
	}

	return []error{e.Kind.sentinel(), e.cause}
}

// HasFieldErrors reports whether the backend sent field-level messages.
func (e *APIError) HasFieldErrors() bool {
	return len(e.FieldErrors) > 0
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

func newNetworkError(cause error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: "no response received",
		cause:   cause,
	}
}

func newMalformedResponseError(httpStatus int, cause error) *APIError {
	return &APIError{
		HTTPStatus: httpStatus,
		Kind:       KindServer,
		Message:    "malformed response payload",
		cause:      cause,
	}
}

// classifyFailure maps a non-successful response onto the error taxonomy.
func classifyFailure(httpStatus int, env envelope, details errorDetails) *APIError {
	apiErr := &APIError{
		HTTPStatus:  httpStatus,
		Message:     env.Message,
		FieldErrors: details.fieldErrors,
		Code:        details.code,
	}

	switch {
	case httpStatus == 403 || details.code == CodeAccessDenied || strings.EqualFold(strings.TrimSpace(env.Message), messageAccessDenied):
		apiErr.Kind = KindAuthorization
	case httpStatus == 401:
		apiErr.Kind = KindAuthorization
	case httpStatus == 404:
		apiErr.Kind = KindNotFound
	case httpStatus >= 500:
		apiErr.Kind = KindServer
	default:
		// 4xx and 2xx envelopes with statusType=false
		apiErr.Kind = KindValidation
	}

	return apiErr
}

// isSessionExpiry reports whether a response carries the expired-credential marker.
// The marker decides regardless of the HTTP status; a 401 only adds the
// plain-message fallback for backends that send no code.
func isSessionExpiry(httpStatus int, env envelope, details errorDetails) bool {
	if isSuccessStatus(httpStatus) && env.StatusType {
		return false
	}

	if details.code == CodeSessionExpired {
		return true
	}

	switch strings.ToLower(strings.TrimSpace(env.Message)) {
	case "jwt expired", "token expired", "session expired":
		return true
	case "invalid token":
		return httpStatus == 401
	}

	return false
}
