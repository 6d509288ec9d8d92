package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for talking to a language model.
// The chat driver and the rubric judges depend only on this interface,
// never on a concrete SDK.
type Provider interface {
	// Generate sends a prompt and returns the complete response.
	// When the request carries a Schema, the provider uses its native
	// structured-output mechanism and the response Content is the
	// validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Streamer is implemented by providers that can emit the response
// incrementally. The chat endpoint prefers it; everything else goes
// through Generate.
type Streamer interface {
	// GenerateStream invokes fn for every token delta and returns the
	// assembled response once the stream ends. fn returning an error
	// aborts the stream.
	GenerateStream(ctx context.Context, req Request, fn func(Chunk) error) (*Response, error)
}

// Chunk is a single streamed token delta.
type Chunk struct {
	Text string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Schema, when set, constrains the response to the given JSON Schema.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls sampling randomness, 0.0–1.0.
	Temperature float64
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "rubric-judgment".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. With a Schema it is the validated
	// JSON object; without one it is the raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text, stripping the JSON
// string quoting when present.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// Stream drives a streaming generation against any Provider. Providers
// implementing Streamer stream for real; for the rest the full response
// is generated and delivered as a single chunk.
func Stream(ctx context.Context, p Provider, req Request, fn func(Chunk) error) (*Response, error) {
	if s, ok := p.(Streamer); ok {
		return s.GenerateStream(ctx, req, fn)
	}
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := fn(Chunk{Text: resp.Text()}); err != nil {
		return nil, err
	}
	return resp, nil
}
