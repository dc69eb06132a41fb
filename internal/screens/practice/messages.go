package practice

import (
	"time"

	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/tracker"
)

// problemLoadedMsg is sent when the tracker has a new problem on screen.
type problemLoadedMsg struct {
	Problem *problem.Problem
	Err     error
}

// gradedMsg is sent when a submitted answer has been graded.
type gradedMsg struct {
	Outcome tracker.Outcome
	Err     error
}

// spinnerTickMsg animates the loading and grading indicator.
type spinnerTickMsg time.Time

// MasteryContinuedMsg is sent to the screen below a practice screen after
// the learner continues from the mastery card.
type MasteryContinuedMsg struct {
	Event tracker.MasteryEvent
}
