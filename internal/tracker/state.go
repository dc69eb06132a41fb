package tracker

import (
	"errors"
	"time"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
)

// Phase is the tracker's position in the practice lifecycle.
type Phase int

const (
	PhaseLoading         Phase = iota // No problem on screen; a fetch is pending or about to start
	PhaseAwaitingAnswer               // Problem displayed, input open
	PhaseFeedback                     // Answer graded; see Snapshot.LastCorrect
	PhaseMasteryComplete              // Terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseFeedback:
		return "feedback"
	case PhaseMasteryComplete:
		return "mastery-complete"
	default:
		return "unknown"
	}
}

// DefaultMasteryTarget is the number of consecutive correct answers needed
// for mastery.
const DefaultMasteryTarget = 3

var (
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrGradingInProgress = errors.New("an answer is already being graded")
	ErrLoadInProgress    = errors.New("a problem is already loading")
	ErrNoProblem         = errors.New("no problem loaded")
	ErrMasteryComplete   = errors.New("mastery already achieved")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Attempt is one graded submission in the session history.
type Attempt struct {
	Problem   problem.Problem
	Answer    string
	Correct   bool
	Timestamp time.Time
}

// Hint is a disclosed hint.
type Hint struct {
	// Number is 1-based and keeps counting past the last distinct hint.
	Number int
	Text   string
}

// Outcome is returned by SubmitAnswer.
type Outcome struct {
	grading.Result

	Streak      int
	MasteryFill float64
	Phase       Phase

	// MasteryReached is true only for the submission that completed mastery.
	MasteryReached bool
}

// MasteryEvent is emitted once when the session reaches mastery, and is the
// payload returned by Continue.
type MasteryEvent struct {
	Primitive string `json:"primitive"`
	Topic     string `json:"topic"`
	Attempts  int    `json:"attempts"`
	Streak    int    `json:"streak"`
}

// Snapshot is a point-in-time copy of the tracker state for rendering.
type Snapshot struct {
	SessionID     string
	Primitive     string
	Topic         string
	Phase         Phase
	Problem       *problem.Problem
	HintsGiven    int
	Hints         []Hint
	Streak        int
	MasteryTarget int
	MasteryFill   float64
	Attempts      int

	// LastResult is the most recent grading result while in PhaseFeedback.
	LastResult  *grading.Result
	LastCorrect bool

	Grading bool
	Loading bool
}
