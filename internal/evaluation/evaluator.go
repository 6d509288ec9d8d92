package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthyoda/intake/internal/llm"
)

// RedFlag is a failed criterion whose severity met the warning
// threshold.
type RedFlag struct {
	Criterion   string   `json:"criterion"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

// Result is the aggregated outcome of scoring one bot utterance.
type Result struct {
	// OverallScore is the fraction of judged criteria that passed, 0–1.
	OverallScore float64 `json:"overall_score"`

	// RubricsEvaluated counts criteria that produced a judgment.
	// Criteria whose judge call failed are excluded, not counted as
	// failures.
	RubricsEvaluated int `json:"rubrics_evaluated"`

	// RubricsPassed counts judged criteria that passed.
	RubricsPassed int `json:"rubrics_passed"`

	// SafetyScore is the pass fraction restricted to safety-tagged
	// criteria, 0–1. Vacuously 1 when no safety criterion was judged.
	SafetyScore float64 `json:"safety_score"`

	// TagScores is the pass fraction per clinical-domain tag.
	TagScores map[string]float64 `json:"tag_scores"`

	// RedFlags lists failed criteria at warning severity or above, in
	// rubric order.
	RedFlags []RedFlag `json:"red_flags"`

	// CriticalFailure is true iff any red flag carries critical
	// severity.
	CriticalFailure bool `json:"critical_failure"`
}

// Config gates and tunes the evaluator.
type Config struct {
	// Enabled turns evaluation on. When false, Evaluate returns nil
	// immediately; the conversation proceeds without scores.
	Enabled bool

	// CriterionTimeout bounds each individual judge call.
	CriterionTimeout time.Duration
}

// DefaultConfig returns sensible defaults with evaluation enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		CriterionTimeout: 30 * time.Second,
	}
}

// Evaluator scores utterances against a fixed rubric set.
type Evaluator struct {
	judge   Judge
	rubrics []Criterion
	cfg     Config
	log     zerolog.Logger
}

// New creates an evaluator over the default rubric set.
func New(judge Judge, cfg Config, log zerolog.Logger) *Evaluator {
	return NewWithRubrics(judge, DefaultRubrics, cfg, log)
}

// NewWithRubrics creates an evaluator over a custom rubric set.
func NewWithRubrics(judge Judge, rubrics []Criterion, cfg Config, log zerolog.Logger) *Evaluator {
	return &Evaluator{judge: judge, rubrics: rubrics, cfg: cfg, log: log}
}

// Evaluate scores one candidate utterance against every rubric
// criterion and aggregates the verdicts.
//
// It returns nil when the evaluator is disabled, and also when zero
// criteria produce a judgment: "could not judge" must stay
// distinguishable from "failed every rubric". A single criterion's
// judge failure is logged and excluded from the aggregate.
func (e *Evaluator) Evaluate(ctx context.Context, history []llm.Message, utterance string, medicalContext string) *Result {
	if !e.cfg.Enabled || len(e.rubrics) == 0 {
		return nil
	}

	if medicalContext != "" {
		history = append([]llm.Message{
			{Role: llm.RoleUser, Content: "Background for this visit: " + medicalContext},
		}, history...)
	}

	type verdict struct {
		judgment Judgment
		ok       bool
	}

	// One judge call per criterion; verdicts land in rubric order so
	// aggregation below is deterministic.
	verdicts := make([]verdict, len(e.rubrics))
	var wg sync.WaitGroup
	for i, criterion := range e.rubrics {
		wg.Add(1)
		go func() {
			defer wg.Done()

			callCtx := ctx
			if e.cfg.CriterionTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, e.cfg.CriterionTimeout)
				defer cancel()
			}

			judgment, err := e.judge.Judge(callCtx, criterion, history, utterance)
			if err != nil {
				e.log.Warn().Err(err).Str("criterion", criterion.ID).
					Msg("rubric judgment failed, excluding criterion")
				return
			}
			verdicts[i] = verdict{judgment: judgment, ok: true}
		}()
	}
	wg.Wait()

	result := &Result{TagScores: map[string]float64{}}

	var safetyEvaluated, safetyPassed int
	tagEvaluated := map[string]int{}
	tagPassed := map[string]int{}

	for i, v := range verdicts {
		if !v.ok {
			continue
		}
		criterion := e.rubrics[i]
		result.RubricsEvaluated++
		if v.judgment.Pass {
			result.RubricsPassed++
		}

		if criterion.Safety {
			safetyEvaluated++
			if v.judgment.Pass {
				safetyPassed++
			}
		}
		if criterion.Domain != "" {
			tagEvaluated[criterion.Domain]++
			if v.judgment.Pass {
				tagPassed[criterion.Domain]++
			}
		}

		if !v.judgment.Pass && v.judgment.Severity.AtLeast(SeverityWarning) {
			result.RedFlags = append(result.RedFlags, RedFlag{
				Criterion:   criterion.ID,
				Severity:    v.judgment.Severity,
				Explanation: v.judgment.Explanation,
			})
			if v.judgment.Severity == SeverityCritical {
				result.CriticalFailure = true
			}
		}
	}

	if result.RubricsEvaluated == 0 {
		return nil
	}

	result.OverallScore = float64(result.RubricsPassed) / float64(result.RubricsEvaluated)
	if safetyEvaluated > 0 {
		result.SafetyScore = float64(safetyPassed) / float64(safetyEvaluated)
	} else {
		result.SafetyScore = 1
	}
	for tag, n := range tagEvaluated {
		result.TagScores[tag] = float64(tagPassed[tag]) / float64(n)
	}

	return result
}
