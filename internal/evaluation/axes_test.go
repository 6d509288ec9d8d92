package evaluation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/healthyoda/intake/internal/llm"
)

func enabledAxisConfig() AxisConfig {
	cfg := DefaultAxisConfig()
	cfg.Enabled = true
	return cfg
}

func TestAxisEvaluator_ParsesScores(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"accuracy":5,"completeness":4,"clarity":5,"empathy":3,"safety":5,"relevance":4,"rationale":"empathy could be warmer"}`),
	})
	a := NewAxisEvaluator(mock, enabledAxisConfig())

	scores := a.Evaluate(context.Background(), nil, "When did the pain start?")
	if scores == nil {
		t.Fatal("expected scores")
	}
	if scores.Empathy != 3 || scores.Safety != 5 {
		t.Errorf("unexpected scores: %+v", scores)
	}
	if scores.Rationale != "empathy could be warmer" {
		t.Errorf("rationale: %q", scores.Rationale)
	}

	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "axis-scores" {
		t.Error("axis request missing structured-output schema")
	}
}

func TestAxisEvaluator_Disabled(t *testing.T) {
	a := NewAxisEvaluator(llm.NewMockProvider(), DefaultAxisConfig())
	if scores := a.Evaluate(context.Background(), nil, "u"); scores != nil {
		t.Errorf("disabled axis judge returned %+v", scores)
	}
}

func TestAxisEvaluator_ErrorIsAdvisory(t *testing.T) {
	a := NewAxisEvaluator(llm.NewMockProvider(), enabledAxisConfig())
	if scores := a.Evaluate(context.Background(), nil, "u"); scores != nil {
		t.Errorf("failed call must yield nil, got %+v", scores)
	}
}
