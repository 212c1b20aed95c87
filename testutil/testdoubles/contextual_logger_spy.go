package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// Log levels recorded by the LoggerSpy.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value logged for key, if present.
func (r LogRecord) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// LoggerSpy captures calls to both the plain and the contextual logger interfaces.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLoggerSpy creates an empty LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(context.Background(), LevelDebug, msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(context.Background(), LevelInfo, msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(context.Background(), LevelWarn, msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(context.Background(), LevelError, msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelDebug, msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelInfo, msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelWarn, msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelError, msg, args)
}

// Records returns a copy of every captured call.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]LogRecord(nil), s.records...)
}

// RecordsAt returns the captured calls of one level.
func (s *LoggerSpy) RecordsAt(level string) []LogRecord {
	var found []LogRecord
	for _, r := range s.Records() {
		if r.Level == level {
			found = append(found, r)
		}
	}

	return found
}

// HasLog reports whether a call with level and message was captured.
func (s *LoggerSpy) HasLog(level, message string) bool {
	_, ok := s.FindLog(level, message)
	return ok
}

// FindLog returns the first captured call with level and message.
func (s *LoggerSpy) FindLog(level, message string) (LogRecord, bool) {
	for _, r := range s.Records() {
		if r.Level == level && r.Message == message {
			return r, true
		}
	}

	return LogRecord{}, false
}

// Reset drops all captured calls.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

var (
	_ apiclient.Logger           = (*LoggerSpy)(nil)
	_ apiclient.ContextualLogger = (*LoggerSpy)(nil)
)
