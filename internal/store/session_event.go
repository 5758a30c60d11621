package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo on database/sql and the global sequence
// counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) timestamp() int64 {
	if r.now != nil {
		return r.now().UnixMilli()
	}
	return time.Now().UnixMilli()
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	subjects := data.SubjectIDs
	if subjects == nil {
		subjects = []string{}
	}
	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("marshal subject ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, timestamp, session_id, action, mode, subject_ids, topic_id,
		 questions, answered, duration_secs, reason, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, r.timestamp(), data.SessionID, data.Action, data.Mode, string(subjectsJSON),
		data.TopicID, data.Questions, data.Answered, data.DurationSecs, data.Reason, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendResult(ctx context.Context, data ResultData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO results
		(sequence, timestamp, session_id, total_questions, correct_answers, wrong_answers, score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, r.timestamp(), data.SessionID, data.TotalQuestions, data.CorrectAnswers,
		data.WrongAnswers, data.Score)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	where, args := opts.where("s.")
	query := `SELECT s.session_id, s.timestamp, s.mode, s.subject_ids, s.topic_id, s.questions,
		e.action, e.reason, e.answered,
		r.total_questions, r.correct_answers, r.wrong_answers, r.score
	FROM session_events s
	LEFT JOIN session_events e ON e.id = (
		SELECT id FROM session_events
		WHERE session_id = s.session_id AND action IN ('` + ActionFinalize + `', '` + ActionAbandon + `')
		ORDER BY sequence DESC LIMIT 1)
	LEFT JOIN results r ON r.id = (
		SELECT id FROM results WHERE session_id = s.session_id ORDER BY sequence DESC LIMIT 1)
	WHERE s.action = '` + ActionStart + `'` + where + `
	ORDER BY s.sequence DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec                   SessionRecord
			ts                    int64
			subjects              string
			outcome, reason       sql.NullString
			answered              sql.NullInt64
			total, correct, wrong sql.NullInt64
			score                 sql.NullFloat64
		)
		if err := rows.Scan(&rec.SessionID, &ts, &rec.Mode, &subjects, &rec.TopicID, &rec.Questions,
			&outcome, &reason, &answered, &total, &correct, &wrong, &score); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt = time.UnixMilli(ts)
		if err := json.Unmarshal([]byte(subjects), &rec.SubjectIDs); err != nil {
			return nil, fmt.Errorf("decode subject ids of %s: %w", rec.SessionID, err)
		}
		rec.Outcome = outcome.String
		rec.Reason = reason.String
		rec.Answered = int(answered.Int64)
		if total.Valid {
			rec.Result = &ResultData{
				SessionID:      rec.SessionID,
				TotalQuestions: int(total.Int64),
				CorrectAnswers: int(correct.Int64),
				WrongAnswers:   int(wrong.Int64),
				Score:          score.Float64,
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// where renders the filter part of opts as " AND ..." clauses on the
// columns of the table aliased by prefix.
func (o QueryOpts) where(prefix string) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if o.After > 0 {
		clauses = append(clauses, prefix+"sequence > ?")
		args = append(args, o.After)
	}
	if o.Before > 0 {
		clauses = append(clauses, prefix+"sequence < ?")
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		clauses = append(clauses, prefix+"timestamp >= ?")
		args = append(args, o.From.UnixMilli())
	}
	if !o.To.IsZero() {
		clauses = append(clauses, prefix+"timestamp <= ?")
		args = append(args, o.To.UnixMilli())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}
