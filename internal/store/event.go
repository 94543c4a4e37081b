package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS exercise_attempts (
		id              TEXT PRIMARY KEY,
		sequence        INTEGER NOT NULL UNIQUE,
		timestamp       INTEGER NOT NULL,
		exercise_id     INTEGER NOT NULL,
		title           TEXT NOT NULL DEFAULT '',
		exercise_type   TEXT NOT NULL DEFAULT '',
		answer          TEXT NOT NULL DEFAULT '',
		is_correct      INTEGER NOT NULL DEFAULT 0,
		score           INTEGER NOT NULL DEFAULT 0,
		max_score       INTEGER NOT NULL DEFAULT 0,
		hints_used      INTEGER NOT NULL DEFAULT 0,
		time_spent_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exercise_attempts_exercise ON exercise_attempts (exercise_id)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id              TEXT PRIMARY KEY,
		sequence        INTEGER NOT NULL UNIQUE,
		timestamp       INTEGER NOT NULL,
		quiz_id         INTEGER NOT NULL,
		attempt_id      INTEGER NOT NULL,
		title           TEXT NOT NULL DEFAULT '',
		score           INTEGER NOT NULL DEFAULT 0,
		total_score     INTEGER NOT NULL DEFAULT 0,
		percentage      REAL NOT NULL DEFAULT 0,
		is_passed       INTEGER NOT NULL DEFAULT 0,
		answered        INTEGER NOT NULL DEFAULT 0,
		questions       INTEGER NOT NULL DEFAULT 0,
		time_spent_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence   INTEGER NOT NULL UNIQUE,
		timestamp  INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// sequenceCounter hands out the monotonic sequence shared by every event
// table, so rows from different tables can be merged in the order they
// happened. The mutex serializes within the process; the RETURNING clause
// makes the increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo over database/sql.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// window appends the QueryOpts filters to a WHERE clause over the sequence
// and timestamp columns.
func (o QueryOpts) window(where string, args []any) (string, []any) {
	if o.After > 0 {
		where += " AND sequence > ?"
		args = append(args, o.After)
	}
	if o.Before > 0 {
		where += " AND sequence < ?"
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		where += " AND timestamp >= ?"
		args = append(args, millis(o.From))
	}
	if !o.To.IsZero() {
		where += " AND timestamp <= ?"
		args = append(args, millis(o.To))
	}
	return where, args
}

func (o QueryOpts) limit() string {
	if o.Limit > 0 {
		return fmt.Sprintf(" LIMIT %d", o.Limit)
	}
	return ""
}
