package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/llm"
	"github.com/chemthink/chemthink/internal/problem"
)

func validProblemJSON() json.RawMessage {
	return json.RawMessage(`{
		"problem_text": "Ammonia (NH3) has one lone pair. What is its H-N-H bond angle?",
		"correct_answer": "107",
		"hint1": "Start from the tetrahedral angle.",
		"hint2": "One lone pair squeezes the bonds by about 2.5 degrees.",
		"worked_solution": "109.5 - 2.5 = 107 degrees.",
		"chemistry_connection": "Lone pairs shape molecular polarity."
	}`)
}

func testSubmission() grading.Submission {
	return grading.Submission{
		ProblemID: "DIRECTION_1",
		Problem: problem.Problem{
			Text:          "What is the bond angle in water?",
			CorrectAnswer: "104.5",
		},
		Answer:     "109.5",
		Primitive:  "DIRECTION",
		Topic:      "bond_angles",
		HintsGiven: 1,
	}
}

func TestGenerator_Problem(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validProblemJSON()})
	gen := NewGenerator(mock, DefaultConfig(), nil)

	prev := "What is the bond angle in water?"
	p, err := gen.Problem(context.Background(), problem.Request{
		Primitive:       "DIRECTION",
		Topic:           "bond_angles",
		Difficulty:      7,
		PreviousProblem: &prev,
	})
	require.NoError(t, err)
	assert.Equal(t, "107", p.CorrectAnswer)
	assert.Equal(t, "Start from the tetrahedral angle.", p.Hint1)
	assert.Equal(t, problem.OriginGenerated, p.Origin)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Equal(t, ProblemSchema, call.Schema)
	assert.Contains(t, call.System, "COLLECTION, ARRANGEMENT, DIRECTION")
	assert.Equal(t, llm.PurposeProblemGen, call.Purpose)
	msg := call.Prompt
	assert.True(t, strings.HasPrefix(msg, "Generate a chemistry-math problem:\nPrimitive: DIRECTION\nTopic: bond_angles\nDifficulty: 3\n"), msg)
	assert.True(t, strings.HasSuffix(msg, "\nMake it different from: What is the bond angle in water?"), msg)
}

func TestGenerator_NoPreviousProblem(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validProblemJSON()})
	gen := NewGenerator(mock, DefaultConfig(), nil)

	_, err := gen.Problem(context.Background(), problem.Request{Primitive: "RATE", Topic: "kinetics", Difficulty: 1})
	require.NoError(t, err)
	assert.NotContains(t, mock.Calls[0].Prompt, "Make it different")
}

func TestGenerator_RejectsEmptyAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"problem_text":"What?","correct_answer":"  ","hint1":"","hint2":"","worked_solution":"","chemistry_connection":""}`),
	})
	gen := NewGenerator(mock, DefaultConfig(), nil)

	_, err := gen.Problem(context.Background(), problem.Request{Primitive: "RATE", Topic: "kinetics", Difficulty: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "correct_answer", verr.Field)
	assert.False(t, IsUnavailable(err))
}

func TestGenerator_Unavailable(t *testing.T) {
	mock := llm.NewMockProvider() // empty queue: provider unavailable
	gen := NewGenerator(mock, DefaultConfig(), nil)

	_, err := gen.Problem(context.Background(), problem.Request{Primitive: "RATE", Topic: "kinetics", Difficulty: 1})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.NotErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerator_SimilarFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	gen := NewGenerator(mock, DefaultConfig(), nil)

	p := gen.Similar(context.Background(), testSubmission())
	assert.Equal(t, "Try this: What is the bond angle in methane (CH4)?", p.Text)
	assert.Equal(t, "109.5 degrees", p.CorrectAnswer)

	assert.Equal(t, llm.PurposeSimilarGen, mock.Calls[0].Purpose)
	msg := mock.Calls[0].Prompt
	assert.Contains(t, msg, "Original problem: What is the bond angle in water?")
	assert.Contains(t, msg, "Difficulty: 1")
}

func TestGenerator_Similar(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validProblemJSON()})
	gen := NewGenerator(mock, DefaultConfig(), nil)

	p := gen.Similar(context.Background(), testSubmission())
	assert.Equal(t, "107", p.CorrectAnswer)
}

func TestGrader_Correct(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"correct":true,"feedback":" Spot on. ","worked_example":"","hint":""}`),
	})
	g := NewGrader(mock, DefaultConfig(), nil)

	sub := testSubmission()
	sub.Answer = "104.5 degrees"
	res, err := g.Grade(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "Spot on.", res.Feedback)
	assert.Equal(t, float64(100), res.MasteryProgress)
	assert.Equal(t, grading.KindLLM, res.Strategy)

	want := "Problem: What is the bond angle in water?\n" +
		"Correct Answer: 104.5\n" +
		"Student Answer: 104.5 degrees\n" +
		"Primitive: DIRECTION\n" +
		"Topic: bond_angles\n" +
		"Hints already given: 1\n" +
		"\nGrade this answer and provide feedback."
	assert.Equal(t, want, mock.Calls[0].Prompt)
	assert.Equal(t, GradeSchema, mock.Calls[0].Schema)
	assert.Equal(t, llm.PurposeGrade, mock.Calls[0].Purpose)
	assert.Zero(t, mock.Calls[0].Temperature)
}

func TestGrader_Incorrect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"correct":false,"feedback":"Lone pairs compress the angle.","worked_example":"NH3: 107 degrees","hint":"Count lone pairs."}`),
	})
	g := NewGrader(mock, DefaultConfig(), nil)

	res, err := g.Grade(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "NH3: 107 degrees", res.WorkedExample)
	assert.Equal(t, float64(20), res.MasteryProgress)
}

func TestGrader_UnparseableIsIncorrect(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`I think it's right`)})
		res, err := NewGrader(mock, DefaultConfig(), nil).Grade(context.Background(), testSubmission())
		require.NoError(t, err)
		assert.False(t, res.Correct)
		assert.Equal(t, "I think it's right", res.Feedback)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrInvalidResponse{
			Content: json.RawMessage(`{"verdict":"yes"}`),
			Err:     errors.New("missing correct"),
		}})
		res, err := NewGrader(mock, DefaultConfig(), nil).Grade(context.Background(), testSubmission())
		require.NoError(t, err)
		assert.False(t, res.Correct)
		assert.Equal(t, `{"verdict":"yes"}`, res.Feedback)
	})
}

func TestGrader_TruncatedIsIncorrect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"correct":false,"feedback":"Lone pairs`),
		Usage:   llm.Usage{InputTokens: 300, OutputTokens: 1024},
	})
	res, err := NewGrader(mock, DefaultConfig(), nil).Grade(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, `{"correct":false,"feedback":"Lone pairs`, res.Feedback)
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(&llm.ErrRateLimit{Provider: "gemini"}))
	assert.True(t, IsUnavailable(&llm.ErrProviderUnavailable{Provider: "anthropic", Status: 401}))
	assert.True(t, IsUnavailable(fmt.Errorf("grade: %w", context.DeadlineExceeded)))
	assert.False(t, IsUnavailable(&llm.ErrInvalidResponse{Err: errors.New("missing correct")}))
	assert.False(t, IsUnavailable(&ValidationError{Field: "problem_text", Message: "empty"}))
}

func TestGrader_Unavailable(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}})
	_, err := NewGrader(mock, DefaultConfig(), nil).Grade(context.Background(), testSubmission())
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestMasteryProgress(t *testing.T) {
	tests := []struct {
		correct bool
		hints   int
		want    float64
	}{
		{true, 0, 100},
		{true, 3, 100},
		{false, 0, 30},
		{false, 1, 20},
		{false, 2, 10},
		{false, 3, 0},
		{false, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MasteryProgress(tt.correct, tt.hints), "correct=%v hints=%d", tt.correct, tt.hints)
	}
}
