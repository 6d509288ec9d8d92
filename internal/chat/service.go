// Package chat drives the intake conversation: it maintains per-session
// history, folds the retrieved question into the prompt, streams the
// model's reply, and fans the finished turn out to the judges.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthyoda/intake/internal/evaluation"
	"github.com/healthyoda/intake/internal/llm"
	"github.com/healthyoda/intake/internal/questionbank"
	"github.com/healthyoda/intake/internal/results"
	"github.com/healthyoda/intake/internal/retrieval"
)

// ErrEmptyMessage is returned when the user text is empty after
// sanitization.
var ErrEmptyMessage = errors.New("chat: empty message")

// Config tunes the dialogue driver.
type Config struct {
	// MaxTokens and Temperature are passed through to the model.
	MaxTokens   int
	Temperature float64

	// HistoryWindow caps how many trailing messages are sent to the
	// model; ContextWindow caps how many feed the question selector.
	HistoryWindow int
	ContextWindow int

	// MaxInputLen bounds one user message after sanitization.
	MaxInputLen int

	// EvaluationTimeout bounds the post-turn judge fan-out.
	EvaluationTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1000,
		Temperature:       0.7,
		HistoryWindow:     20,
		ContextWindow:     5,
		MaxInputLen:       5000,
		EvaluationTimeout: 2 * time.Minute,
	}
}

// Turn is one completed exchange, returned once the reply has fully
// streamed. Evaluation results arrive later through the recorder.
type Turn struct {
	// ID identifies the turn for feedback and stored results.
	ID string

	// Text is the assembled assistant reply.
	Text string

	// Hint is the question-book record folded into the prompt, nil when
	// retrieval found nothing.
	Hint *questionbank.Record
}

// Service is the dialogue driver.
type Service struct {
	provider  llm.Provider
	history   *HistoryStore
	selector  *retrieval.Selector
	evaluator *evaluation.Evaluator
	axes      *evaluation.AxisEvaluator
	recorder  *results.Recorder
	cfg       Config
	log       zerolog.Logger
}

// NewService wires the dialogue driver. evaluator, axes and recorder
// may be nil to run without scoring.
func NewService(provider llm.Provider, selector *retrieval.Selector, evaluator *evaluation.Evaluator, axes *evaluation.AxisEvaluator, recorder *results.Recorder, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		provider:  provider,
		history:   NewHistoryStore(),
		selector:  selector,
		evaluator: evaluator,
		axes:      axes,
		recorder:  recorder,
		cfg:       cfg,
		log:       log,
	}
}

// History exposes the session store for the HTTP surface.
func (s *Service) History() *HistoryStore {
	return s.history
}

// Stream runs one turn: sanitize the user text, select the next intake
// question, stream the model reply through emit, then kick off
// evaluation in the background. The reply is never delayed or blocked
// by the judges.
func (s *Service) Stream(ctx context.Context, sessionID, userText string, emit func(token string) error) (*Turn, error) {
	userText = SanitizeInput(userText, s.cfg.MaxInputLen)
	if userText == "" {
		return nil, ErrEmptyMessage
	}
	if !ValidSessionID(sessionID) {
		sessionID = "default"
	}

	s.history.Append(sessionID, llm.Message{Role: llm.RoleUser, Content: userText})

	hint := s.selectQuestion(sessionID)

	// The judge history is captured before the reply exists so the
	// evaluators see exactly what the model saw.
	judgeHistory := s.history.Window(sessionID, s.cfg.HistoryWindow)

	ctx = llm.WithPurpose(ctx, "chat")
	resp, err := llm.Stream(ctx, s.provider, llm.Request{
		System:      BuildSystemPrompt(hint),
		Messages:    judgeHistory,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}, func(c llm.Chunk) error {
		return emit(c.Text)
	})
	if err != nil {
		return nil, err
	}

	reply := resp.Text()
	s.history.Append(sessionID, llm.Message{Role: llm.RoleAssistant, Content: reply})

	turn := &Turn{ID: uuid.NewString(), Text: reply, Hint: hint}
	s.logTurn(sessionID, userText, turn)

	go s.evaluateTurn(turn, sessionID, userText, judgeHistory)

	return turn, nil
}

// selectQuestion asks the retrieval layer for the next question based
// on recent conversation text.
func (s *Service) selectQuestion(sessionID string) *questionbank.Record {
	if s.selector == nil || !s.selector.Enabled() {
		return nil
	}

	recent := s.history.Window(sessionID, s.cfg.ContextWindow)
	parts := make([]string, 0, len(recent))
	for _, msg := range recent {
		parts = append(parts, msg.Content)
	}

	rec, ok := s.selector.SelectNext(strings.Join(parts, " "), retrieval.Hints{})
	if !ok {
		return nil
	}
	return &rec
}

// evaluateTurn runs both judges over the finished reply and records the
// outcome. It runs detached from the request context: the patient has
// their answer, scoring finishes on its own clock.
func (s *Service) evaluateTurn(turn *Turn, sessionID, userText string, judgeHistory []llm.Message) {
	if s.recorder == nil {
		return
	}

	ctx := context.Background()
	if s.cfg.EvaluationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.EvaluationTimeout)
		defer cancel()
	}

	medicalContext := ""
	if turn.Hint != nil {
		medicalContext = "The interview is currently covering: " + turn.Hint.TreePath()
	}

	var primary *evaluation.Result
	var axisScores *evaluation.AxisScores

	done := make(chan struct{}, 2)
	go func() {
		if s.evaluator != nil {
			primary = s.evaluator.Evaluate(ctx, judgeHistory, turn.Text, medicalContext)
		}
		done <- struct{}{}
	}()
	go func() {
		if s.axes != nil {
			axisScores = s.axes.Evaluate(ctx, judgeHistory, turn.Text)
		}
		done <- struct{}{}
	}()
	<-done
	<-done

	inputs := results.TurnInputs{UserText: userText, BotText: turn.Text}
	if turn.Hint != nil {
		inputs.TreePath = turn.Hint.TreePath()
		inputs.Tags = turn.Hint.Tags()
	}
	s.recorder.Record(ctx, turn.ID, sessionID, inputs, primary, axisScores)

	if primary != nil {
		ev := s.log.Info()
		if primary.CriticalFailure {
			ev = s.log.Error()
		}
		ev.Str("session", sessionID).
			Str("turn", turn.ID).
			Float64("overall", primary.OverallScore).
			Float64("safety", primary.SafetyScore).
			Int("red_flags", len(primary.RedFlags)).
			Msg("turn evaluated")
	}
}

func (s *Service) logTurn(sessionID, userText string, turn *Turn) {
	ev := s.log.Info().
		Str("session", sessionID).
		Str("turn", turn.ID).
		Str("user", truncate(userText, 100)).
		Str("bot", truncate(turn.Text, 150))
	if turn.Hint != nil {
		ev = ev.Str("tree_branch", turn.Hint.TreePath()).
			Strs("tags", turn.Hint.Tags())
	}
	ev.Msg("chat turn")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
