package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// SpanSpy is the SpanContext handed out by the TracingCollectorSpy.
type SpanSpy struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (c *SpanSpy) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpanSpy) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// SpanRecord is one captured span.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	EndAttributes   map[string]string
	Status          string
	Finished        bool
	span            *SpanSpy
}

// TracingCollectorSpy captures started and finished spans.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpanRecord
}

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, apiclient.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span := &SpanSpy{}
	s.spans = append(s.spans, SpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		span:            span,
	})

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx apiclient.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanSpy)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spans {
		if s.spans[i].span == span {
			s.spans[i].Status = status
			s.spans[i].EndAttributes = maps.Clone(attrs)
			s.spans[i].Finished = true

			return
		}
	}
}

// Spans returns a copy of all captured spans.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpanRecord(nil), s.spans...)
}

// FindSpan returns the first captured span with name.
func (s *TracingCollectorSpy) FindSpan(name string) (SpanRecord, bool) {
	for _, span := range s.Spans() {
		if span.Name == name {
			return span, true
		}
	}

	return SpanRecord{}, false
}

var _ apiclient.TracingCollector = (*TracingCollectorSpy)(nil)
