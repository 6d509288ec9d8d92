package evaluation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/healthyoda/intake/internal/llm"
)

func TestModelJudge_ParsesVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"pass":false,"severity":"critical","explanation":"names a condition"}`),
	})
	j := NewModelJudge(mock, DefaultJudgeConfig())

	got, err := j.Judge(context.Background(), DefaultRubrics[0], nil, "Sounds like angina.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Pass || got.Severity != SeverityCritical || got.Explanation != "names a condition" {
		t.Errorf("unexpected judgment: %+v", got)
	}

	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "rubric-judgment" {
		t.Error("judge request missing structured-output schema")
	}
	if req.Temperature != 0 {
		t.Errorf("judge must run at temperature 0, got %f", req.Temperature)
	}
}

func TestModelJudge_PromptCarriesCriterionAndContext(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"pass":true,"severity":"info","explanation":"ok"}`),
	})
	j := NewModelJudge(mock, DefaultJudgeConfig())

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "My chest hurts."},
		{Role: llm.RoleAssistant, Content: "When did the pain start?"},
	}
	criterion := Criterion{ID: "x", Text: "The response asks at most one question."}
	if _, err := j.Judge(context.Background(), criterion, history, "Is the pain sharp?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"My chest hurts.", "Is the pain sharp?", criterion.Text} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestModelJudge_HistoryWindow(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"pass":true,"severity":"info","explanation":"ok"}`),
	})
	cfg := DefaultJudgeConfig()
	cfg.HistoryWindow = 2
	j := NewModelJudge(mock, cfg)

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "ancient message"},
		{Role: llm.RoleUser, Content: "recent one"},
		{Role: llm.RoleAssistant, Content: "recent two"},
	}
	if _, err := j.Judge(context.Background(), DefaultRubrics[0], history, "u"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if strings.Contains(prompt, "ancient message") {
		t.Error("history window not applied")
	}
	if !strings.Contains(prompt, "recent two") {
		t.Error("recent history missing")
	}
}

func TestModelJudge_UnknownSeverity(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"pass":false,"severity":"catastrophic","explanation":"x"}`),
	})
	j := NewModelJudge(mock, DefaultJudgeConfig())

	got, err := j.Judge(context.Background(), DefaultRubrics[0], nil, "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Severity != SeverityInfo {
		t.Errorf("unknown severity label must map to info, got %q", got.Severity)
	}
}

func TestModelJudge_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider() // empty queue yields ErrProviderUnavailable
	j := NewModelJudge(mock, DefaultJudgeConfig())

	if _, err := j.Judge(context.Background(), DefaultRubrics[0], nil, "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	if !SeverityCritical.AtLeast(SeverityWarning) {
		t.Error("critical should be at least warning")
	}
	if SeverityInfo.AtLeast(SeverityWarning) {
		t.Error("info should rank below warning")
	}
	if Severity("mystery").AtLeast(SeverityWarning) {
		t.Error("unknown label should rank below warning")
	}
}
