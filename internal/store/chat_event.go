package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendChatMessage(ctx context.Context, data ChatMessageData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO chat_messages
		(sequence, timestamp, session_id, role, content) VALUES (?, ?, ?, ?, ?)`,
		seqNum, millis(time.Now()), data.SessionID, data.Role, data.Content,
	)
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

// ChatTranscript returns a conversation in the order it happened.
func (r *eventRepo) ChatTranscript(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, timestamp, session_id, role, content
		FROM chat_messages WHERE session_id = ? ORDER BY sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat transcript: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var (
			m  ChatMessage
			ts int64
		)
		if err := rows.Scan(&m.ID, &m.Sequence, &ts, &m.SessionID, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.Timestamp = fromMillis(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ChatSessions lists conversations, most recently started first.
func (r *eventRepo) ChatSessions(ctx context.Context, limit int) ([]ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT session_id, MIN(timestamp), COUNT(*)
		FROM chat_messages GROUP BY session_id ORDER BY MIN(sequence) DESC`+QueryOpts{Limit: limit}.limit())
	if err != nil {
		return nil, fmt.Errorf("query chat sessions: %w", err)
	}
	defer rows.Close()

	var out []ChatSession
	for rows.Next() {
		var (
			s  ChatSession
			ts int64
		)
		if err := rows.Scan(&s.SessionID, &ts, &s.Messages); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		s.Started = fromMillis(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}
