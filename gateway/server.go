package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// ErrMissingDependency is returned when NewServer is called without a store or token issuer.
var ErrMissingDependency = errors.New("gateway: circulation, directory and token issuer are required")

// Server serves the backend contract.
type Server struct {
	circulation      Circulation
	directory        Directory
	tokens           *TokenIssuer
	clock            func() time.Time
	cors             *cors.Cors
	logger           apiclient.Logger
	contextualLogger apiclient.ContextualLogger
	metrics          apiclient.MetricsCollector
	tracing          apiclient.TracingCollector
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the basic logger.
func WithLogger(logger apiclient.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithContextualLogger sets the contextual logger, preferred over the basic one.
func WithContextualLogger(logger apiclient.ContextualLogger) Option {
	return func(s *Server) {
		s.contextualLogger = logger
	}
}

// WithMetrics sets the metrics collector for request metrics.
func WithMetrics(collector apiclient.MetricsCollector) Option {
	return func(s *Server) {
		s.metrics = collector
	}
}

// WithTracing sets the tracing collector for request spans.
func WithTracing(collector apiclient.TracingCollector) Option {
	return func(s *Server) {
		s.tracing = collector
	}
}

// WithCORS enables CORS handling with the given options.
func WithCORS(options cors.Options) Option {
	return func(s *Server) {
		s.cors = cors.New(options)
	}
}

// WithClock replaces time.Now, e.g. for the default borrow date in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates a Server.
func NewServer(circulation Circulation, directory Directory, tokens *TokenIssuer, opts ...Option) (*Server, error) {
	if circulation == nil || directory == nil || tokens == nil {
		return nil, ErrMissingDependency
	}

	s := &Server{
		circulation: circulation,
		directory:   directory,
		tokens:      tokens,
		clock:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("POST /borrow-records/get-borrow-status", s.authenticated(s.handleBorrowStatus))
	mux.Handle("POST /borrow-records/add-borrow-record", s.authenticated(s.handleAddBorrowRecord))
	mux.Handle("POST /borrow-records/return-borrow-record", s.authenticated(s.handleReturnBorrowRecord))
	mux.Handle("GET /borrow-records/{id}", s.authenticated(s.handleGetBorrowRecord))

	mux.Handle("GET /books", s.authenticated(s.handleListBooks))
	mux.Handle("GET /books/{id}", s.authenticated(s.handleGetBook))
	mux.Handle("POST /books", s.authenticated(s.managersOnly(s.handleCreateBook)))
	mux.Handle("PUT /books/{id}", s.authenticated(s.managersOnly(s.handleUpdateBook)))
	mux.Handle("DELETE /books/{id}", s.authenticated(s.managersOnly(s.handleDeleteBook)))

	for _, collection := range DirectoryCollections {
		mux.Handle("GET /"+collection, s.authenticated(s.handleListDocuments(collection)))
		mux.Handle("GET /"+collection+"/{id}", s.authenticated(s.handleGetDocument(collection)))
		mux.Handle("POST /"+collection, s.authenticated(s.managersOnly(s.handleCreateDocument(collection))))
		mux.Handle("PUT /"+collection+"/{id}", s.authenticated(s.managersOnly(s.handleUpdateDocument(collection))))
		mux.Handle("DELETE /"+collection+"/{id}", s.authenticated(s.managersOnly(s.handleDeleteDocument(collection))))
	}

	var handler http.Handler = s.observe(mux)
	if s.cors != nil {
		handler = s.cors.Handler(handler)
	}

	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, msgOK, map[string]string{"status": msgOK})
}
