package grading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemthink/chemthink/internal/problem"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"104.5°", "104.5"},
		{" Hydrogen Bonding ", "hydrogenbonding"},
		{"sp³", "sp"},
		{"0.25!", "0.25"},
		{"°", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizedGrade(t *testing.T) {
	cases := []struct {
		student, correct string
		want             bool
	}{
		{"104.5°", "104.5", true},
		{"about 104.5 degrees", "104.5", true},
		{"10", "109.5", true},
		{"90", "180", false},
		{"Sublimation", "sublimation", true},
		{"°", "104.5", false},
		{"   ", "180", false},
	}
	for _, c := range cases {
		if got := NormalizedGrade(c.student, c.correct); got != c.want {
			t.Errorf("NormalizedGrade(%q, %q) = %v, want %v", c.student, c.correct, got, c.want)
		}
	}
}

func TestLocal_Correct(t *testing.T) {
	sub := Submission{
		Problem: problem.Problem{CorrectAnswer: "180", WorkedSolution: "straight line"},
		Answer:  "180°",
	}
	res, err := Local{}.Grade(context.Background(), sub)
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.Equal(t, "Correct! Great work.", res.Feedback)
	assert.Empty(t, res.WorkedExample)
	assert.Equal(t, 100.0, res.MasteryProgress)
	assert.Equal(t, KindLocal, res.Strategy)
}

func TestLocal_Incorrect(t *testing.T) {
	sub := Submission{
		Problem: problem.Problem{CorrectAnswer: "180", WorkedSolution: "straight line"},
		Answer:  "90",
	}
	res, err := Local{}.Grade(context.Background(), sub)
	require.NoError(t, err)

	assert.False(t, res.Correct)
	assert.Equal(t, "Not quite. The answer is 180. straight line", res.Feedback)
	assert.Equal(t, "straight line", res.WorkedExample)
	assert.Zero(t, res.MasteryProgress)
}

func TestLocal_Kind(t *testing.T) {
	var s Strategy = Local{}
	assert.Equal(t, KindLocal, s.Kind())
}
