package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (r *eventRepo) AppendExerciseAttempt(ctx context.Context, data ExerciseAttemptData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `INSERT INTO exercise_attempts
		(id, sequence, timestamp, exercise_id, title, exercise_type, answer,
		 is_correct, score, max_score, hints_used, time_spent_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seqNum, millis(time.Now()), data.ExerciseID, data.Title, data.ExerciseType,
		data.Answer, boolInt(data.IsCorrect), data.Score, data.MaxScore, data.HintsUsed,
		data.TimeSpentSecs,
	)
	if err != nil {
		return "", fmt.Errorf("save exercise attempt: %w", err)
	}
	return id, nil
}

func (r *eventRepo) AppendQuizAttempt(ctx context.Context, data QuizAttemptData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_attempts
		(id, sequence, timestamp, quiz_id, attempt_id, title, score, total_score,
		 percentage, is_passed, answered, questions, time_spent_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seqNum, millis(time.Now()), data.QuizID, data.AttemptID, data.Title,
		data.Score, data.TotalScore, data.Percentage, boolInt(data.IsPassed),
		data.Answered, data.Questions, data.TimeSpentSecs,
	)
	if err != nil {
		return "", fmt.Errorf("save quiz attempt: %w", err)
	}
	return id, nil
}

// QueryAttempts merges both attempt tables on the shared sequence.
func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]Attempt, error) {
	where, args := opts.window("1=1", nil)
	query := `SELECT * FROM (
		SELECT id, sequence, timestamp, 'exercise' AS kind, exercise_id AS ref_id, title,
		       score, max_score, is_correct AS success, hints_used, time_spent_secs
		FROM exercise_attempts
		UNION ALL
		SELECT id, sequence, timestamp, 'quiz', quiz_id, title,
		       score, total_score, is_passed, 0, time_spent_secs
		FROM quiz_attempts
	) WHERE ` + where + ` ORDER BY sequence DESC` + opts.limit()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a       Attempt
			ts      int64
			success int
		)
		if err := rows.Scan(&a.ID, &a.Sequence, &ts, &a.Kind, &a.RefID, &a.Title,
			&a.Score, &a.MaxScore, &success, &a.HintsUsed, &a.TimeSpentSecs); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Timestamp = fromMillis(ts)
		a.Success = success != 0
		out = append(out, a)
	}
	return out, rows.Err()
}
