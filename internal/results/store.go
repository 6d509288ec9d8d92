package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/healthyoda/intake/internal/llm"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite event log: model requests, evaluated turns and
// user feedback, all append-only. It backs both llm.EventSink and the
// recorder's Sink.
type Store struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS model_requests (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		at            TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS turns (
		id               TEXT PRIMARY KEY,
		conversation_id  TEXT NOT NULL,
		recorded_at      TEXT NOT NULL,
		user_text        TEXT NOT NULL,
		bot_text         TEXT NOT NULL,
		tree_path        TEXT NOT NULL DEFAULT '',
		tags             TEXT NOT NULL DEFAULT '',
		evaluation       TEXT,
		axis_scores      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns (conversation_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		turn_id TEXT NOT NULL,
		at      TEXT NOT NULL,
		rating  TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	)`,
}

// Open connects to the SQLite database at dsn, applies pragmas and
// creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for a single-writer service process.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// AppendModelRequest records one model API call. Implements
// llm.EventSink.
func (s *Store) AppendModelRequest(ctx context.Context, ev llm.RequestEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO model_requests
		 (at, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		ev.Provider, ev.Model, ev.Purpose,
		ev.InputTokens, ev.OutputTokens, ev.LatencyMs,
		boolInt(ev.Success), ev.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save model request event: %w", err)
	}
	return nil
}

// AppendTurn records one evaluated turn. Evaluations are stored as JSON
// documents; their shape evolves with the rubric set and a schema per
// field would ossify it.
func (s *Store) AppendTurn(ctx context.Context, rec TurnRecord) error {
	evalJSON, err := nullableJSON(rec.Primary)
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}
	axesJSON, err := nullableJSON(rec.Axes)
	if err != nil {
		return fmt.Errorf("encode axis scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turns
		 (id, conversation_id, recorded_at, user_text, bot_text, tree_path, tags, evaluation, axis_scores)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConversationID,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		rec.Inputs.UserText, rec.Inputs.BotText,
		rec.Inputs.TreePath, strings.Join(rec.Inputs.Tags, ","),
		evalJSON, axesJSON,
	)
	if err != nil {
		return fmt.Errorf("save turn record: %w", err)
	}
	return nil
}

// AppendFeedback records one user rating.
func (s *Store) AppendFeedback(ctx context.Context, fb Feedback) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (turn_id, at, rating, comment) VALUES (?, ?, ?, ?)`,
		fb.TurnID, fb.At.UTC().Format(time.RFC3339Nano), fb.Rating, fb.Comment,
	)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// Summary aggregates the persisted event log for the stats command.
type Summary struct {
	Turns          int     `json:"turns"`
	Conversations  int     `json:"conversations"`
	EvaluatedTurns int     `json:"evaluated_turns"`
	ModelRequests  int     `json:"model_requests"`
	FailedRequests int     `json:"failed_requests"`
	MeanLatencyMs  float64 `json:"mean_latency_ms"`
	TotalTokens    int     `json:"total_tokens"`
	ThumbsUp       int     `json:"thumbs_up"`
	ThumbsDown     int     `json:"thumbs_down"`
}

// Summarize reads aggregate counters across the whole log.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT conversation_id), COUNT(evaluation) FROM turns`,
	).Scan(&sum.Turns, &sum.Conversations, &sum.EvaluatedTurns)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize turns: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(1 - success), 0),
		        COALESCE(AVG(latency_ms), 0),
		        COALESCE(SUM(input_tokens + output_tokens), 0)
		 FROM model_requests`,
	).Scan(&sum.ModelRequests, &sum.FailedRequests, &sum.MeanLatencyMs, &sum.TotalTokens)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize model requests: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating = 'thumbs_up'), 0),
		        COALESCE(SUM(rating = 'thumbs_down'), 0)
		 FROM feedback`,
	).Scan(&sum.ThumbsUp, &sum.ThumbsDown)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize feedback: %w", err)
	}

	return sum, nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. HEALTHYODA_DB environment variable
// 2. $XDG_DATA_HOME/healthyoda/healthyoda.db
// 3. ~/.local/share/healthyoda/healthyoda.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("HEALTHYODA_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "healthyoda", "healthyoda.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableJSON encodes v, mapping a nil pointer to SQL NULL.
func nullableJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
