package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func verdictSchema() *Schema {
	return &Schema{
		Name:        "test-verdict",
		Description: "test schema",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pass":     map[string]any{"type": "boolean"},
				"severity": map[string]any{"type": "string", "enum": []any{"info", "warning", "critical"}},
			},
			"required":             []any{"pass", "severity"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema must skip validation, got %v", err)
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	err := validateResponse(verdictSchema(), json.RawMessage(`{"pass":true,"severity":"info"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"pass": tru`},
		{"missing required", `{"pass":true}`},
		{"enum violation", `{"pass":true,"severity":"catastrophic"}`},
		{"extra property", `{"pass":true,"severity":"info","extra":1}`},
	}
	for _, tt := range tests {
		err := validateResponse(verdictSchema(), json.RawMessage(tt.raw))
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Errorf("%s: expected ErrInvalidResponse, got %v", tt.name, err)
		}
	}
}

func TestValidateResponse_SchemaCached(t *testing.T) {
	s := verdictSchema()
	if err := validateResponse(s, json.RawMessage(`{"pass":true,"severity":"info"}`)); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	if _, ok := schemaCache.Load(s.Name); !ok {
		t.Error("compiled schema not cached")
	}
	// Second pass must hit the cache and still validate.
	if err := validateResponse(s, json.RawMessage(`{"pass":false,"severity":"warning"}`)); err != nil {
		t.Fatalf("second validation: %v", err)
	}
}
