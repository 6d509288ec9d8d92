package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RequestEvent captures one model API call for the event sink.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventSink receives model request events. The SQLite event store in
// the results package implements it; a nil sink disables persistence.
type EventSink interface {
	AppendModelRequest(ctx context.Context, ev RequestEvent) error
}

// LoggingProvider is a decorator that logs every model request and,
// when a sink is configured, records it as an event.
type LoggingProvider struct {
	inner Provider
	sink  EventSink
	log   zerolog.Logger
}

// WithLogging wraps a Provider with request logging. sink may be nil.
func WithLogging(p Provider, sink EventSink, log zerolog.Logger) *LoggingProvider {
	return &LoggingProvider{inner: p, sink: sink, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, resp, err, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) GenerateStream(ctx context.Context, req Request, fn func(Chunk) error) (*Response, error) {
	start := time.Now()
	resp, err := Stream(ctx, l.inner, req, fn)
	l.record(ctx, resp, err, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, resp *Response, err error, elapsed time.Duration) {
	purpose := PurposeFrom(ctx)

	ev := RequestEvent{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: elapsed.Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.Model = resp.Model
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	logEv := l.log.Debug()
	if err != nil {
		logEv = l.log.Warn().Err(err)
	}
	logEv.Str("purpose", purpose).
		Str("model", ev.Model).
		Int64("latency_ms", ev.LatencyMs).
		Int("input_tokens", ev.InputTokens).
		Int("output_tokens", ev.OutputTokens).
		Msg("model request")

	// Persist the event but never fail the request over it.
	if l.sink != nil {
		if sinkErr := l.sink.AppendModelRequest(ctx, ev); sinkErr != nil {
			l.log.Warn().Err(sinkErr).Msg("failed to record model request event")
		}
	}
}
