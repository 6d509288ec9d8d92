package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/healthyoda/intake/internal/llm"
)

// stubJudge returns scripted judgments keyed by criterion ID.
type stubJudge struct {
	judgments map[string]Judgment
	errs      map[string]error
}

func (s *stubJudge) Judge(_ context.Context, c Criterion, _ []llm.Message, _ string) (Judgment, error) {
	if err, ok := s.errs[c.ID]; ok {
		return Judgment{}, err
	}
	if j, ok := s.judgments[c.ID]; ok {
		return j, nil
	}
	return Judgment{Pass: true, Severity: SeverityInfo}, nil
}

func testRubrics() []Criterion {
	return []Criterion{
		{ID: "a-safety", Text: "a", Safety: true, Domain: "scope"},
		{ID: "b-safety", Text: "b", Safety: true, Domain: "scope"},
		{ID: "c-interview", Text: "c", Domain: "interview"},
		{ID: "d-interview", Text: "d", Domain: "interview"},
	}
}

func newTestEvaluator(j Judge) *Evaluator {
	return NewWithRubrics(j, testRubrics(), DefaultConfig(), zerolog.Nop())
}

func TestEvaluate_AllPass(t *testing.T) {
	e := newTestEvaluator(&stubJudge{})

	res := e.Evaluate(context.Background(), nil, "How long has this lasted?", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.OverallScore != 1 || res.SafetyScore != 1 {
		t.Errorf("scores: overall %f, safety %f", res.OverallScore, res.SafetyScore)
	}
	if res.RubricsEvaluated != 4 || res.RubricsPassed != 4 {
		t.Errorf("counts: %d evaluated, %d passed", res.RubricsEvaluated, res.RubricsPassed)
	}
	if len(res.RedFlags) != 0 || res.CriticalFailure {
		t.Errorf("unexpected red flags: %+v", res)
	}
}

func TestEvaluate_CriticalFailure(t *testing.T) {
	e := newTestEvaluator(&stubJudge{judgments: map[string]Judgment{
		"a-safety": {Pass: false, Severity: SeverityCritical, Explanation: "diagnosed the patient"},
		"c-interview": {Pass: false, Severity: SeverityInfo},
	}})

	res := e.Evaluate(context.Background(), nil, "Sounds like angina to me.", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.OverallScore != 0.5 {
		t.Errorf("overall: got %f, want 0.5", res.OverallScore)
	}
	if res.SafetyScore != 0.5 {
		t.Errorf("safety: got %f, want 0.5", res.SafetyScore)
	}
	// Only the warning-or-worse failure becomes a red flag; the info
	// failure lowers the score silently.
	if len(res.RedFlags) != 1 || res.RedFlags[0].Criterion != "a-safety" {
		t.Fatalf("red flags: %+v", res.RedFlags)
	}
	if !res.CriticalFailure {
		t.Error("expected critical failure")
	}
	if got := res.TagScores["interview"]; got != 0.5 {
		t.Errorf("interview tag score: got %f", got)
	}
}

func TestEvaluate_WarningIsNotCritical(t *testing.T) {
	e := newTestEvaluator(&stubJudge{judgments: map[string]Judgment{
		"c-interview": {Pass: false, Severity: SeverityWarning, Explanation: "asked three questions"},
	}})

	res := e.Evaluate(context.Background(), nil, "u", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	if len(res.RedFlags) != 1 {
		t.Fatalf("red flags: %+v", res.RedFlags)
	}
	if res.CriticalFailure {
		t.Error("warning must not set CriticalFailure")
	}
}

func TestEvaluate_DegradedExcludesFailedCalls(t *testing.T) {
	e := newTestEvaluator(&stubJudge{
		errs: map[string]error{"b-safety": errors.New("judge timeout")},
	})

	res := e.Evaluate(context.Background(), nil, "u", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	// Three of four criteria judged; the failed call is excluded, not
	// counted as a failure.
	if res.RubricsEvaluated != 3 {
		t.Errorf("evaluated: got %d, want 3", res.RubricsEvaluated)
	}
	if res.OverallScore != 1 {
		t.Errorf("overall: got %f, want 1", res.OverallScore)
	}
	if res.SafetyScore != 1 {
		t.Errorf("safety: got %f, want 1", res.SafetyScore)
	}
}

func TestEvaluate_AllCallsFail(t *testing.T) {
	e := newTestEvaluator(&stubJudge{errs: map[string]error{
		"a-safety":    errors.New("down"),
		"b-safety":    errors.New("down"),
		"c-interview": errors.New("down"),
		"d-interview": errors.New("down"),
	}})

	if res := e.Evaluate(context.Background(), nil, "u", ""); res != nil {
		t.Errorf("zero judged criteria must yield nil, got %+v", res)
	}
}

func TestEvaluate_Disabled(t *testing.T) {
	e := NewWithRubrics(&stubJudge{}, testRubrics(), Config{Enabled: false}, zerolog.Nop())
	if res := e.Evaluate(context.Background(), nil, "u", ""); res != nil {
		t.Errorf("disabled evaluator must return nil, got %+v", res)
	}
}

func TestEvaluate_SafetyVacuouslyPerfect(t *testing.T) {
	rubrics := []Criterion{{ID: "only-interview", Text: "x", Domain: "interview"}}
	e := NewWithRubrics(&stubJudge{judgments: map[string]Judgment{
		"only-interview": {Pass: false, Severity: SeverityInfo},
	}}, rubrics, DefaultConfig(), zerolog.Nop())

	res := e.Evaluate(context.Background(), nil, "u", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.SafetyScore != 1 {
		t.Errorf("no safety criteria judged: safety must be 1, got %f", res.SafetyScore)
	}
	if res.OverallScore != 0 {
		t.Errorf("overall: got %f, want 0", res.OverallScore)
	}
}

func TestEvaluate_RedFlagsInRubricOrder(t *testing.T) {
	e := newTestEvaluator(&stubJudge{judgments: map[string]Judgment{
		"d-interview": {Pass: false, Severity: SeverityWarning},
		"a-safety":    {Pass: false, Severity: SeverityWarning},
	}})

	res := e.Evaluate(context.Background(), nil, "u", "")
	if res == nil {
		t.Fatal("expected a result")
	}
	if len(res.RedFlags) != 2 {
		t.Fatalf("red flags: %+v", res.RedFlags)
	}
	if res.RedFlags[0].Criterion != "a-safety" || res.RedFlags[1].Criterion != "d-interview" {
		t.Errorf("red flags out of rubric order: %+v", res.RedFlags)
	}
}

func TestDefaultRubrics_SafetyCoverage(t *testing.T) {
	safety := 0
	seen := map[string]bool{}
	for _, c := range DefaultRubrics {
		if seen[c.ID] {
			t.Errorf("duplicate criterion ID %q", c.ID)
		}
		seen[c.ID] = true
		if c.Safety {
			safety++
		}
	}
	if safety == 0 {
		t.Fatal("rubric set has no safety criteria")
	}
}
