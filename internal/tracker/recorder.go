package tracker

import (
	"context"
	"time"

	"github.com/chemthink/chemthink/internal/grading"
)

// Recorder persists session activity. Implementations must be safe for
// concurrent use. Errors are logged by the tracker and otherwise ignored.
type Recorder interface {
	RecordAttempt(ctx context.Context, rec AttemptRecord) error
	RecordHint(ctx context.Context, rec HintRecord) error
	RecordMastery(ctx context.Context, rec MasteryRecord) error
}

// AttemptRecord describes one graded submission.
type AttemptRecord struct {
	SessionID     string
	Primitive     string
	Topic         string
	ProblemText   string
	StudentAnswer string
	CorrectAnswer string
	Correct       bool
	Feedback      string
	Strategy      grading.Kind
	HintsGiven    int
	MasteryTarget int
	Timestamp     time.Time
}

// HintRecord describes one disclosed hint.
type HintRecord struct {
	SessionID   string
	Primitive   string
	Topic       string
	ProblemText string
	HintNumber  int
	HintText    string
	Timestamp   time.Time
}

// MasteryRecord describes the moment a session reached mastery.
type MasteryRecord struct {
	SessionID string
	MasteryEvent
	Timestamp time.Time
}

type nopRecorder struct{}

func (nopRecorder) RecordAttempt(context.Context, AttemptRecord) error { return nil }
func (nopRecorder) RecordHint(context.Context, HintRecord) error       { return nil }
func (nopRecorder) RecordMastery(context.Context, MasteryRecord) error { return nil }
