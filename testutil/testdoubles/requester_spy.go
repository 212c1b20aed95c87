package testdoubles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestRecord is one captured backend call.
type RequestRecord struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// DecodeBody unmarshals the captured JSON body into v.
func (r RequestRecord) DecodeBody(v any) error {
	return jsonAPI.Unmarshal(r.Body, v)
}

// Responder produces the data payload (or error) for a captured request.
type Responder func(ctx context.Context, req RequestRecord) (any, error)

// RequesterSpy is an in-process stand-in for *apiclient.Client.
// Responses are round-tripped through JSON into the caller's out value,
// so decoding behaves like a real envelope. Unconfigured routes fail with a not-found APIError.
type RequesterSpy struct {
	mu         sync.Mutex
	requests   []RequestRecord
	responders map[string]Responder
}

// NewRequesterSpy creates a RequesterSpy without any configured routes.
func NewRequesterSpy() *RequesterSpy {
	return &RequesterSpy{responders: make(map[string]Responder)}
}

func routeKey(method, path string) string {
	return method + " " + path
}

// On registers responder for method and path.
func (s *RequesterSpy) On(method, path string, responder Responder) *RequesterSpy {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responders[routeKey(method, path)] = responder

	return s
}

// RespondWith registers a fixed data payload for method and path.
func (s *RequesterSpy) RespondWith(method, path string, data any) *RequesterSpy {
	return s.On(method, path, func(context.Context, RequestRecord) (any, error) {
		return data, nil
	})
}

// FailWith registers a fixed error for method and path.
func (s *RequesterSpy) FailWith(method, path string, err error) *RequesterSpy {
	return s.On(method, path, func(context.Context, RequestRecord) (any, error) {
		return nil, err
	})
}

func (s *RequesterSpy) Get(ctx context.Context, path string, query url.Values, out any) error {
	return s.do(ctx, http.MethodGet, path, query, nil, out)
}

func (s *RequesterSpy) Post(ctx context.Context, path string, body any, out any) error {
	return s.do(ctx, http.MethodPost, path, nil, body, out)
}

func (s *RequesterSpy) Put(ctx context.Context, path string, body any, out any) error {
	return s.do(ctx, http.MethodPut, path, nil, body, out)
}

func (s *RequesterSpy) Delete(ctx context.Context, path string, out any) error {
	return s.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (s *RequesterSpy) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	record := RequestRecord{Method: method, Path: path, Query: query}

	if body != nil {
		raw, err := jsonAPI.Marshal(body)
		if err != nil {
			return err
		}
		record.Body = raw
	}

	s.mu.Lock()
	s.requests = append(s.requests, record)
	responder, ok := s.responders[routeKey(method, path)]
	s.mu.Unlock()

	if !ok {
		return apiclient.NewAPIError(apiclient.KindNotFound, http.StatusNotFound, fmt.Sprintf("no responder for %s %s", method, path))
	}

	data, err := responder(ctx, record)
	if err != nil {
		return err
	}

	if out == nil || data == nil {
		return nil
	}

	raw, err := jsonAPI.Marshal(data)
	if err != nil {
		return err
	}

	return jsonAPI.Unmarshal(raw, out)
}

// Requests returns a copy of all captured requests.
func (s *RequesterSpy) Requests() []RequestRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RequestRecord(nil), s.requests...)
}

// Count returns how many requests were made to method and path.
func (s *RequesterSpy) Count(method, path string) int {
	count := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			count++
		}
	}

	return count
}

// Last returns the most recent request to method and path.
func (s *RequesterSpy) Last(method, path string) (RequestRecord, bool) {
	requests := s.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Method == method && requests[i].Path == path {
			return requests[i], true
		}
	}

	return RequestRecord{}, false
}

// Reset forgets captured requests but keeps the configured responders.
func (s *RequesterSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}
