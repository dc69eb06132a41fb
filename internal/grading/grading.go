// Package grading evaluates learner answers. A Strategy is the remote
// practice API, an LLM tutor, or the local normalized comparison used
// offline.
package grading

import (
	"context"

	"github.com/chemthink/chemthink/internal/problem"
)

// Kind tags which strategy produced a Result.
type Kind string

const (
	KindRemote Kind = "remote"
	KindLocal  Kind = "local"
	KindLLM    Kind = "llm"
)

// Submission is one answer to grade.
type Submission struct {
	ProblemID  string
	Problem    problem.Problem
	Answer     string
	Primitive  string
	Topic      string
	HintsGiven int
}

// Result is the outcome of grading a Submission.
type Result struct {
	Correct  bool
	Feedback string

	// WorkedExample is shown on incorrect answers. Empty when the grader
	// did not supply one.
	WorkedExample string

	// MasteryProgress is the grader's own progress estimate (0-100). It is
	// informational; session mastery is driven by the streak.
	MasteryProgress float64

	Strategy Kind
}

// Strategy grades submissions.
type Strategy interface {
	Kind() Kind
	Grade(ctx context.Context, sub Submission) (Result, error)
}
