package grading

import (
	"context"
	"fmt"
	"strings"
)

// Local grades by normalized string comparison. It never fails.
type Local struct{}

func (Local) Kind() Kind { return KindLocal }

func (Local) Grade(_ context.Context, sub Submission) (Result, error) {
	correct := NormalizedGrade(sub.Answer, sub.Problem.CorrectAnswer)
	if correct {
		return Result{
			Correct:         true,
			Feedback:        "Correct! Great work.",
			MasteryProgress: 100,
			Strategy:        KindLocal,
		}, nil
	}
	return Result{
		Correct:       false,
		Feedback:      fmt.Sprintf("Not quite. The answer is %s. %s", sub.Problem.CorrectAnswer, sub.Problem.WorkedSolution),
		WorkedExample: sub.Problem.WorkedSolution,
		Strategy:      KindLocal,
	}, nil
}

// Normalize lower-cases s and drops every character outside [a-z0-9.].
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizedGrade reports whether student matches correct after
// normalization: equal, or either one contains the other ("10" matches
// "109.5"). A student answer that normalizes to nothing never matches.
func NormalizedGrade(student, correct string) bool {
	s, c := Normalize(student), Normalize(correct)
	if s == "" {
		return false
	}
	return s == c || strings.Contains(s, c) || strings.Contains(c, s)
}
