package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type studentRepo struct {
	db *sql.DB
}

func (r *studentRepo) Touch(ctx context.Context, studentID string, at time.Time) error {
	at = eventTime(at)
	query, args := builder().Insert(tableStudents).
		Columns("student_id", "created_at", "last_active").
		Values(studentID, at, at).
		OnConflict(
			entsql.ConflictColumns("student_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("last_active")
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch student: %w", err)
	}
	return nil
}

func (r *studentRepo) Get(ctx context.Context, studentID string) (*Student, error) {
	query, args := builder().Select("student_id", "created_at", "last_active").
		From(entsql.Table(tableStudents)).
		Where(entsql.EQ("student_id", studentID)).
		Query()

	var s Student
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.StudentID, &s.CreatedAt, &s.LastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}
