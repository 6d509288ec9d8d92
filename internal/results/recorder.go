// Package results accumulates per-turn evaluation records and exposes
// rolling statistics for dashboards and feedback loops.
package results

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthyoda/intake/internal/evaluation"
)

// TurnInputs carries the conversational context of a recorded turn.
type TurnInputs struct {
	UserText string
	BotText  string

	// TreePath and Tags describe the retrieval hint used for the turn,
	// empty when no question was selected.
	TreePath string
	Tags     []string
}

// TurnRecord is one immutable evaluated turn. Either evaluation may be
// nil when the corresponding judge was disabled or unavailable.
type TurnRecord struct {
	ID             string
	ConversationID string
	Inputs         TurnInputs
	Primary        *evaluation.Result
	Axes           *evaluation.AxisScores
	RecordedAt     time.Time
}

// Feedback is a user rating attached to a recorded turn.
type Feedback struct {
	TurnID  string
	Rating  string // "thumbs_up" or "thumbs_down"
	Comment string
	At      time.Time
}

// Statistics summarizes all recorded turns.
type Statistics struct {
	// Count is the total number of recorded turns, including turns
	// whose evaluation was unavailable.
	Count int `json:"count"`

	// Evaluated counts turns that carry a primary rubric result.
	Evaluated int `json:"evaluated"`

	// MeanOverall and MeanSafety average over evaluated turns.
	MeanOverall float64 `json:"mean_overall_score"`
	MeanSafety  float64 `json:"mean_safety_score"`

	// RedFlagRate is the fraction of evaluated turns with at least one
	// red flag.
	RedFlagRate float64 `json:"red_flag_rate"`

	// CriticalFailures counts evaluated turns flagged critical.
	CriticalFailures int `json:"critical_failures"`

	// TagMeans averages each clinical-domain tag score over the
	// evaluated turns where the tag appeared.
	TagMeans map[string]float64 `json:"tag_means"`
}

// Sink receives a copy of every record for external persistence.
// The SQLite event store implements it; a nil sink keeps everything
// in memory only.
type Sink interface {
	AppendTurn(ctx context.Context, rec TurnRecord) error
	AppendFeedback(ctx context.Context, fb Feedback) error
}

// Recorder is the append-only store of evaluated turns. Records are
// immutable once written; appends are safe under concurrent turns and
// Statistics never observes a partially written record.
type Recorder struct {
	mu       sync.Mutex
	turns    []TurnRecord
	feedback []Feedback

	// Incrementally maintained sums so Statistics stays O(tags).
	evaluated    int
	sumOverall   float64
	sumSafety    float64
	redFlagged   int
	critical     int
	tagSums      map[string]float64
	tagCounts    map[string]int

	sink Sink
	log  zerolog.Logger
}

// NewRecorder creates a recorder. sink may be nil.
func NewRecorder(sink Sink, log zerolog.Logger) *Recorder {
	return &Recorder{
		tagSums:   map[string]float64{},
		tagCounts: map[string]int{},
		sink:      sink,
		log:       log,
	}
}

// Record appends one evaluated turn and returns its ID. turnID is the
// caller's identifier for the turn, minted when the reply was sent;
// an empty turnID gets a fresh one.
func (r *Recorder) Record(ctx context.Context, turnID, conversationID string, inputs TurnInputs, primary *evaluation.Result, axes *evaluation.AxisScores) string {
	if turnID == "" {
		turnID = uuid.NewString()
	}
	rec := TurnRecord{
		ID:             turnID,
		ConversationID: conversationID,
		Inputs:         inputs,
		Primary:        primary,
		Axes:           axes,
		RecordedAt:     time.Now().UTC(),
	}

	r.mu.Lock()
	r.turns = append(r.turns, rec)
	if primary != nil {
		r.evaluated++
		r.sumOverall += primary.OverallScore
		r.sumSafety += primary.SafetyScore
		if len(primary.RedFlags) > 0 {
			r.redFlagged++
		}
		if primary.CriticalFailure {
			r.critical++
		}
		for tag, score := range primary.TagScores {
			r.tagSums[tag] += score
			r.tagCounts[tag]++
		}
	}
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.AppendTurn(ctx, rec); err != nil {
			r.log.Warn().Err(err).Str("turn", rec.ID).Msg("failed to persist turn record")
		}
	}

	return rec.ID
}

// AddFeedback attaches a user rating to a recorded turn. Feedback is
// its own append-only stream; turn records stay immutable.
func (r *Recorder) AddFeedback(ctx context.Context, turnID, rating, comment string) bool {
	r.mu.Lock()
	found := false
	for i := range r.turns {
		if r.turns[i].ID == turnID {
			found = true
			break
		}
	}
	var fb Feedback
	if found {
		fb = Feedback{TurnID: turnID, Rating: rating, Comment: comment, At: time.Now().UTC()}
		r.feedback = append(r.feedback, fb)
	}
	r.mu.Unlock()

	if !found {
		return false
	}
	if r.sink != nil {
		if err := r.sink.AppendFeedback(ctx, fb); err != nil {
			r.log.Warn().Err(err).Str("turn", turnID).Msg("failed to persist feedback")
		}
	}
	return true
}

// Recent returns up to limit records, most recent first.
func (r *Recorder) Recent(limit int) []TurnRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.turns)
	if limit < 0 {
		limit = 0
	}
	if limit > n {
		limit = n
	}
	out := make([]TurnRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.turns[i])
	}
	return out
}

// Statistics summarizes every record passed to Record before the call.
func (r *Recorder) Statistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Statistics{
		Count:            len(r.turns),
		Evaluated:        r.evaluated,
		CriticalFailures: r.critical,
		TagMeans:         make(map[string]float64, len(r.tagSums)),
	}
	if r.evaluated > 0 {
		stats.MeanOverall = r.sumOverall / float64(r.evaluated)
		stats.MeanSafety = r.sumSafety / float64(r.evaluated)
		stats.RedFlagRate = float64(r.redFlagged) / float64(r.evaluated)
	}
	for tag, sum := range r.tagSums {
		stats.TagMeans[tag] = sum / float64(r.tagCounts[tag])
	}
	return stats
}
