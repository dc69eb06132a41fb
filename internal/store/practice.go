package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// practiceRepo implements PracticeRepo.
type practiceRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var attemptColumns = []string{
	"id", "sequence", "timestamp", "session_id", "student_id", "primitive",
	"topic", "problem_text", "student_answer", "correct_answer",
	"is_correct", "feedback", "strategy", "hints_given",
}

func (r *practiceRepo) AppendAttempt(ctx context.Context, data AttemptData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(tablePracticeAttempts).
		Columns(attemptColumns[1:]...).
		Values(
			seqNum,
			eventTime(data.Timestamp),
			data.SessionID,
			data.StudentID,
			data.Primitive,
			data.Topic,
			data.ProblemText,
			data.StudentAnswer,
			data.CorrectAnswer,
			data.Correct,
			data.Feedback,
			data.Strategy,
			data.HintsGiven,
		).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save practice attempt: %w", err)
	}
	return nil
}

func (r *practiceRepo) AppendHint(ctx context.Context, data HintEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(tableHintEvents).
		Columns("sequence", "timestamp", "session_id", "student_id", "primitive",
			"topic", "problem_text", "hint_number", "hint_text").
		Values(
			seqNum,
			eventTime(data.Timestamp),
			data.SessionID,
			data.StudentID,
			data.Primitive,
			data.Topic,
			data.ProblemText,
			data.HintNumber,
			data.HintText,
		).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}

func (r *practiceRepo) AppendMastery(ctx context.Context, data MasteryEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(tableMasteryEvents).
		Columns("sequence", "timestamp", "session_id", "student_id", "primitive",
			"topic", "attempts", "streak").
		Values(
			seqNum,
			eventTime(data.Timestamp),
			data.SessionID,
			data.StudentID,
			data.Primitive,
			data.Topic,
			data.Attempts,
			data.Streak,
		).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mastery event: %w", err)
	}
	return nil
}

func (r *practiceRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]Attempt, error) {
	sel := builder().Select(attemptColumns...).
		From(entsql.Table(tablePracticeAttempts)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query practice attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.ID,
			&a.Sequence,
			&a.Timestamp,
			&a.SessionID,
			&a.StudentID,
			&a.Primitive,
			&a.Topic,
			&a.ProblemText,
			&a.StudentAnswer,
			&a.CorrectAnswer,
			&a.Correct,
			&a.Feedback,
			&a.Strategy,
			&a.HintsGiven,
		); err != nil {
			return nil, fmt.Errorf("scan practice attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *practiceRepo) CountHints(ctx context.Context, sessionID string) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(tableHintEvents)).
		Where(entsql.EQ("session_id", sessionID)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hints: %w", err)
	}
	return n, nil
}

func (r *practiceRepo) QueryMastery(ctx context.Context, opts QueryOpts) ([]MasteryEventData, error) {
	sel := builder().Select("timestamp", "session_id", "student_id", "primitive", "topic", "attempts", "streak").
		From(entsql.Table(tableMasteryEvents)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery events: %w", err)
	}
	defer rows.Close()

	var out []MasteryEventData
	for rows.Next() {
		var m MasteryEventData
		if err := rows.Scan(&m.Timestamp, &m.SessionID, &m.StudentID, &m.Primitive, &m.Topic, &m.Attempts, &m.Streak); err != nil {
			return nil, fmt.Errorf("scan mastery event: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func progressKey(studentID, primitive, topic string) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("student_id", studentID),
		entsql.EQ("primitive", primitive),
		entsql.EQ("topic", topic),
	)
}

func (r *practiceRepo) UpdateProgress(ctx context.Context, studentID, primitive, topic string, correct bool, target int, at time.Time) (Progress, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Progress{}, fmt.Errorf("begin progress update: %w", err)
	}
	defer tx.Rollback()

	p := Progress{StudentID: studentID, Primitive: primitive, Topic: topic}

	query, args := builder().Select("streak", "mastery_achieved", "attempts").
		From(entsql.Table(tableProgress)).
		Where(progressKey(studentID, primitive, topic)).
		Query()
	err = tx.QueryRowContext(ctx, query, args...).Scan(&p.Streak, &p.MasteryAchieved, &p.Attempts)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Progress{}, fmt.Errorf("load progress: %w", err)
	}

	if correct {
		p.Streak++
	} else {
		p.Streak = 0
	}
	p.Attempts++
	p.MasteryAchieved = p.MasteryAchieved || p.Streak >= target
	p.LastAttempt = eventTime(at)

	if exists {
		query, args = builder().Update(tableProgress).
			Set("streak", p.Streak).
			Set("mastery_achieved", p.MasteryAchieved).
			Set("attempts", p.Attempts).
			Set("last_attempt", p.LastAttempt).
			Where(progressKey(studentID, primitive, topic)).
			Query()
	} else {
		query, args = builder().Insert(tableProgress).
			Columns("student_id", "primitive", "topic", "streak", "mastery_achieved", "attempts", "last_attempt").
			Values(studentID, primitive, topic, p.Streak, p.MasteryAchieved, p.Attempts, p.LastAttempt).
			Query()
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Progress{}, fmt.Errorf("save progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Progress{}, fmt.Errorf("commit progress: %w", err)
	}
	return p, nil
}

func (r *practiceRepo) ListProgress(ctx context.Context, studentID string) ([]Progress, error) {
	query, args := builder().Select("student_id", "primitive", "topic", "streak", "mastery_achieved", "attempts", "last_attempt").
		From(entsql.Table(tableProgress)).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy("primitive", "topic").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.StudentID, &p.Primitive, &p.Topic, &p.Streak, &p.MasteryAchieved, &p.Attempts, &p.LastAttempt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *practiceRepo) ResetProgress(ctx context.Context, studentID string) (int64, error) {
	query, args := builder().Update(tableProgress).
		Set("streak", 0).
		Set("mastery_achieved", false).
		Where(entsql.EQ("student_id", studentID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset progress: %w", err)
	}
	return res.RowsAffected()
}

// eventTime normalizes t to UTC, substituting now for the zero time.
func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
