package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	From      time.Time // timestamp >= From
	StudentID string    // exact match when set
	Primitive string    // exact match when set
	Topic     string    // exact match when set
	Purpose   string    // LLM events only; exact match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns nil when no event has the given ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// AttemptData captures one graded practice submission.
type AttemptData struct {
	SessionID     string
	StudentID     string
	Primitive     string
	Topic         string
	ProblemText   string
	StudentAnswer string
	CorrectAnswer string
	Correct       bool
	Feedback      string
	Strategy      string
	HintsGiven    int
	Timestamp     time.Time
}

// Attempt is a stored practice attempt.
type Attempt struct {
	ID       int
	Sequence int64
	AttemptData
}

// HintEventData captures one disclosed hint.
type HintEventData struct {
	SessionID   string
	StudentID   string
	Primitive   string
	Topic       string
	ProblemText string
	HintNumber  int
	HintText    string
	Timestamp   time.Time
}

// MasteryEventData captures the moment a session reached mastery.
type MasteryEventData struct {
	SessionID string
	StudentID string
	Primitive string
	Topic     string
	Attempts  int
	Streak    int
	Timestamp time.Time
}

// Progress is the per-student standing on one (primitive, topic) pair.
type Progress struct {
	StudentID       string
	Primitive       string
	Topic           string
	Streak          int
	MasteryAchieved bool
	Attempts        int
	LastAttempt     time.Time
}

// PracticeRepo stores practice activity and the progress it accumulates.
type PracticeRepo interface {
	AppendAttempt(ctx context.Context, data AttemptData) error
	AppendHint(ctx context.Context, data HintEventData) error
	AppendMastery(ctx context.Context, data MasteryEventData) error

	// QueryAttempts returns attempts newest first.
	QueryAttempts(ctx context.Context, opts QueryOpts) ([]Attempt, error)

	// CountHints returns the number of hints disclosed in a session.
	CountHints(ctx context.Context, sessionID string) (int, error)

	// QueryMastery returns mastery events newest first.
	QueryMastery(ctx context.Context, opts QueryOpts) ([]MasteryEventData, error)

	// UpdateProgress applies one graded attempt to the student's progress
	// row, creating it on first use, and returns the new state.
	UpdateProgress(ctx context.Context, studentID, primitive, topic string, correct bool, target int, at time.Time) (Progress, error)

	// ListProgress returns every progress row of the student ordered by
	// primitive and topic.
	ListProgress(ctx context.Context, studentID string) ([]Progress, error)

	// ResetProgress zeroes the student's streaks and clears mastery. Attempt
	// counts and recorded events are kept.
	ResetProgress(ctx context.Context, studentID string) (int64, error)
}

// Student is a registered learner identity.
type Student struct {
	StudentID  string
	CreatedAt  time.Time
	LastActive time.Time
}

// StudentRepo manages learner identities.
type StudentRepo interface {
	// Touch creates the student if needed and updates last_active.
	Touch(ctx context.Context, studentID string, at time.Time) error

	// Get returns nil when the student does not exist.
	Get(ctx context.Context, studentID string) (*Student, error)
}
