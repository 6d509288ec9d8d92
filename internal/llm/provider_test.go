package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestResponse_Text(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`"plain text reply"`, "plain text reply"},
		{`{"structured":true}`, `{"structured":true}`},
	}
	for _, tt := range tests {
		r := &Response{Content: json.RawMessage(tt.content)}
		if got := r.Text(); got != tt.want {
			t.Errorf("Text(%s): got %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestStream_UsesStreamerWhenAvailable(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"one two three"`)},
	)

	var chunks []string
	resp, err := Stream(context.Background(), mock, Request{}, func(c Chunk) error {
		chunks = append(chunks, c.Text)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Errorf("expected word-level chunks, got %v", chunks)
	}
	if got := strings.Join(chunks, ""); got != "one two three" {
		t.Errorf("assembled chunks: %q", got)
	}
	if resp.Text() != "one two three" {
		t.Errorf("final response: %q", resp.Text())
	}
}

// plainProvider implements only Provider, not Streamer.
type plainProvider struct{ inner *MockProvider }

func (p *plainProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return p.inner.Generate(ctx, req)
}
func (p *plainProvider) ModelID() string { return "plain" }

func TestStream_FallsBackToSingleChunk(t *testing.T) {
	p := &plainProvider{inner: NewMockProvider(
		MockResponse{Content: json.RawMessage(`"whole reply"`)},
	)}

	var chunks []string
	_, err := Stream(context.Background(), p, Request{}, func(c Chunk) error {
		chunks = append(chunks, c.Text)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "whole reply" {
		t.Errorf("expected one chunk with full text, got %v", chunks)
	}
}

func TestStream_CallbackErrorAborts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"one two three"`)},
	)

	boom := errors.New("client went away")
	_, err := Stream(context.Background(), mock, Request{}, func(Chunk) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestWithPurpose(t *testing.T) {
	ctx := WithPurpose(context.Background(), "rubric-judge")
	if got := PurposeFrom(ctx); got != "rubric-judge" {
		t.Errorf("got %q", got)
	}
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("expected unknown purpose, got %q", got)
	}
}
