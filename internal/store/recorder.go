package store

import (
	"context"
	"fmt"

	"github.com/chemthink/chemthink/internal/tracker"
)

// PracticeRecorder persists tracker activity for one student.
type PracticeRecorder struct {
	repo      PracticeRepo
	studentID string
}

var _ tracker.Recorder = (*PracticeRecorder)(nil)

// NewPracticeRecorder returns a tracker.Recorder writing to repo.
func NewPracticeRecorder(repo PracticeRepo, studentID string) *PracticeRecorder {
	return &PracticeRecorder{repo: repo, studentID: studentID}
}

// RecordAttempt appends the attempt and folds it into the progress row.
func (p *PracticeRecorder) RecordAttempt(ctx context.Context, rec tracker.AttemptRecord) error {
	err := p.repo.AppendAttempt(ctx, AttemptData{
		SessionID:     rec.SessionID,
		StudentID:     p.studentID,
		Primitive:     rec.Primitive,
		Topic:         rec.Topic,
		ProblemText:   rec.ProblemText,
		StudentAnswer: rec.StudentAnswer,
		CorrectAnswer: rec.CorrectAnswer,
		Correct:       rec.Correct,
		Feedback:      rec.Feedback,
		Strategy:      string(rec.Strategy),
		HintsGiven:    rec.HintsGiven,
		Timestamp:     rec.Timestamp,
	})
	if err != nil {
		return err
	}

	target := rec.MasteryTarget
	if target < 1 {
		target = tracker.DefaultMasteryTarget
	}
	if _, err := p.repo.UpdateProgress(ctx, p.studentID, rec.Primitive, rec.Topic, rec.Correct, target, rec.Timestamp); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (p *PracticeRecorder) RecordHint(ctx context.Context, rec tracker.HintRecord) error {
	return p.repo.AppendHint(ctx, HintEventData{
		SessionID:   rec.SessionID,
		StudentID:   p.studentID,
		Primitive:   rec.Primitive,
		Topic:       rec.Topic,
		ProblemText: rec.ProblemText,
		HintNumber:  rec.HintNumber,
		HintText:    rec.HintText,
		Timestamp:   rec.Timestamp,
	})
}

func (p *PracticeRecorder) RecordMastery(ctx context.Context, rec tracker.MasteryRecord) error {
	return p.repo.AppendMastery(ctx, MasteryEventData{
		SessionID: rec.SessionID,
		StudentID: p.studentID,
		Primitive: rec.Primitive,
		Topic:     rec.Topic,
		Attempts:  rec.Attempts,
		Streak:    rec.Streak,
		Timestamp: rec.Timestamp,
	})
}
