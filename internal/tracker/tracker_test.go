package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
)

// --- fakes ---

type fakeSource struct {
	mu       sync.Mutex
	problems []*problem.Problem
	err      error
	requests []problem.Request
}

func (f *fakeSource) Problem(_ context.Context, req problem.Request) (*problem.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	p := f.problems[(len(f.requests)-1)%len(f.problems)]
	cp := *p
	return &cp, nil
}

func (f *fakeSource) lastRequest() problem.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeGrader struct {
	mu    sync.Mutex
	calls []grading.Submission
	res   grading.Result
	err   error
	gate  chan struct{}
}

func (f *fakeGrader) Kind() grading.Kind { return grading.KindRemote }

func (f *fakeGrader) Grade(_ context.Context, sub grading.Submission) (grading.Result, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sub)
	if f.err != nil {
		return grading.Result{}, f.err
	}
	return f.res, nil
}

func (f *fakeGrader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memRecorder struct {
	mu       sync.Mutex
	attempts []AttemptRecord
	hints    []HintRecord
	mastery  []MasteryRecord
}

func (m *memRecorder) RecordAttempt(_ context.Context, rec AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, rec)
	return nil
}

func (m *memRecorder) RecordHint(_ context.Context, rec HintRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hints = append(m.hints, rec)
	return nil
}

func (m *memRecorder) RecordMastery(_ context.Context, rec MasteryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mastery = append(m.mastery, rec)
	return nil
}

var errDown = errors.New("connection refused")

var waterProblem = &problem.Problem{
	Text:           "Water angle?",
	CorrectAnswer:  "104.5",
	Hint1:          "less than tetrahedral",
	Hint2:          "between 100 and 110",
	WorkedSolution: "lone pairs compress the angle",
	Origin:         problem.OriginRemote,
}

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

// newOffline builds a tracker with no remote source or grader.
func newOffline(t *testing.T, events *[]MasteryEvent) (*Tracker, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	tr, err := New(Config{
		Primitive: "DIRECTION",
		Topic:     "bond_angles",
		Fallback:  &fakeSource{problems: []*problem.Problem{waterProblem}},
		Recorder:  rec,
		OnMastery: func(e MasteryEvent) {
			if events != nil {
				*events = append(*events, e)
			}
		},
		Now: fixedNow,
	})
	require.NoError(t, err)
	return tr, rec
}

// --- tests ---

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Topic: "bond_angles"})
	assert.Error(t, err)

	_, err = New(Config{Primitive: "DIRECTION"})
	assert.Error(t, err)

	_, err = New(Config{Primitive: "DIRECTION", Topic: "bond_angles", MasteryTarget: -1})
	assert.Error(t, err)

	tr, err := New(Config{Primitive: "DIRECTION", Topic: "bond_angles"})
	require.NoError(t, err)
	s := tr.Snapshot()
	assert.Equal(t, DefaultMasteryTarget, s.MasteryTarget)
	assert.Equal(t, PhaseLoading, s.Phase)
	assert.Nil(t, s.Problem)
	assert.NotEmpty(t, tr.SessionID())
}

func TestMastery_ThreeCorrect(t *testing.T) {
	var events []MasteryEvent
	tr, rec := newOffline(t, &events)
	ctx := context.Background()

	_, err := tr.RequestProblem(ctx)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		out, err := tr.SubmitAnswer(ctx, "104.5")
		require.NoError(t, err)
		assert.True(t, out.Correct)
		assert.Equal(t, i, out.Streak)
		if i < 3 {
			assert.Equal(t, PhaseFeedback, out.Phase)
			assert.False(t, out.MasteryReached)
			_, err = tr.Next(ctx)
			require.NoError(t, err)
		} else {
			assert.Equal(t, PhaseMasteryComplete, out.Phase)
			assert.True(t, out.MasteryReached)
			assert.Equal(t, 100.0, out.MasteryFill)
		}
	}

	require.Len(t, events, 1)
	assert.Equal(t, MasteryEvent{Primitive: "DIRECTION", Topic: "bond_angles", Attempts: 3, Streak: 3}, events[0])
	assert.Len(t, tr.History(), 3)
	require.Len(t, rec.mastery, 1)
	assert.Equal(t, tr.SessionID(), rec.mastery[0].SessionID)

	payload, err := tr.Continue()
	require.NoError(t, err)
	assert.Equal(t, events[0], payload)

	// Continue is idempotent and does not emit again.
	again, err := tr.Continue()
	require.NoError(t, err)
	assert.Equal(t, payload, again)
	assert.Len(t, events, 1)
	assert.Equal(t, PhaseMasteryComplete, tr.Snapshot().Phase)
}

func TestMastery_IsTerminal(t *testing.T) {
	tr, _ := newOffline(t, nil)
	ctx := context.Background()

	tr.RequestProblem(ctx)
	for range 3 {
		_, err := tr.SubmitAnswer(ctx, "104.5")
		require.NoError(t, err)
		tr.Next(ctx)
	}

	_, err := tr.SubmitAnswer(ctx, "104.5")
	assert.ErrorIs(t, err, ErrMasteryComplete)
	_, err = tr.RequestProblem(ctx)
	assert.ErrorIs(t, err, ErrMasteryComplete)
	_, err = tr.Next(ctx)
	assert.ErrorIs(t, err, ErrMasteryComplete)
	_, err = tr.RevealHint()
	assert.ErrorIs(t, err, ErrMasteryComplete)
	assert.Equal(t, 3, tr.Snapshot().Streak)
}

func TestMastery_AttemptsCountIncorrect(t *testing.T) {
	var events []MasteryEvent
	tr, _ := newOffline(t, &events)
	ctx := context.Background()

	tr.RequestProblem(ctx)
	answers := []string{"90", "104.5", "7", "104.5", "104.5", "104.5"}
	for _, a := range answers {
		out, err := tr.SubmitAnswer(ctx, a)
		require.NoError(t, err)
		if out.Phase == PhaseMasteryComplete {
			break
		}
		if out.Correct {
			_, err = tr.Next(ctx)
		} else {
			_, err = tr.TrySimilar(ctx)
		}
		require.NoError(t, err)
	}

	require.Len(t, events, 1)
	assert.Equal(t, len(answers), events[0].Attempts)
	assert.Equal(t, 3, events[0].Streak)
}

func TestIncorrect_ResetsStreakAndDifficulty(t *testing.T) {
	remote := &fakeSource{problems: []*problem.Problem{waterProblem}}
	tr, err := New(Config{Primitive: "DIRECTION", Topic: "bond_angles", MasteryTarget: 10, Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	tr.RequestProblem(ctx)
	assert.Equal(t, 1, remote.lastRequest().Difficulty)
	assert.Nil(t, remote.lastRequest().PreviousProblem)

	for range 4 {
		_, err := tr.SubmitAnswer(ctx, "104.5")
		require.NoError(t, err)
		_, err = tr.Next(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, remote.lastRequest().Difficulty)
	require.NotNil(t, remote.lastRequest().PreviousProblem)
	assert.Equal(t, "Water angle?", *remote.lastRequest().PreviousProblem)

	out, err := tr.SubmitAnswer(ctx, "90")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Zero(t, out.Streak)
	assert.Zero(t, out.MasteryFill)

	_, err = tr.TrySimilar(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.lastRequest().Difficulty)
}

func TestDifficultyProgression(t *testing.T) {
	remote := &fakeSource{problems: []*problem.Problem{waterProblem}}
	tr, err := New(Config{Primitive: "DIRECTION", Topic: "bond_angles", MasteryTarget: 10, Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	tr.RequestProblem(ctx)
	want := []int{1, 2, 2, 3, 3, 3}
	for i, w := range want {
		_, err := tr.SubmitAnswer(ctx, "104.5")
		require.NoError(t, err)
		_, err = tr.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, w, remote.lastRequest().Difficulty, "after %d correct", i+1)
	}
}

func TestHints(t *testing.T) {
	tr, rec := newOffline(t, nil)
	ctx := context.Background()
	tr.RequestProblem(ctx)

	texts := []string{
		"less than tetrahedral",
		"between 100 and 110",
		"The answer is close to: 104.5",
		"The answer is close to: 104.5",
		"The answer is close to: 104.5",
	}
	for i, want := range texts {
		h, err := tr.RevealHint()
		require.NoError(t, err)
		assert.Equal(t, i+1, h.Number)
		assert.Equal(t, want, h.Text)
	}
	assert.Equal(t, 5, tr.Snapshot().HintsGiven)
	assert.Len(t, tr.Snapshot().Hints, 5)
	assert.Len(t, rec.hints, 5)

	out, err := tr.SubmitAnswer(ctx, "104.5")
	require.NoError(t, err)
	require.Len(t, rec.attempts, 1)
	assert.Equal(t, 5, rec.attempts[0].HintsGiven)

	// Hints are closed once the answer is graded.
	_, err = tr.RevealHint()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.True(t, out.Correct)
	tr.Next(ctx)
	assert.Zero(t, tr.Snapshot().HintsGiven)
	assert.Empty(t, tr.Snapshot().Hints)
}

func TestHints_GenericWhenMissing(t *testing.T) {
	bare := &problem.Problem{Text: "Bare?", CorrectAnswer: "2"}
	tr, err := New(Config{
		Primitive: "COLLECTION", Topic: "moles",
		Fallback: &fakeSource{problems: []*problem.Problem{bare}},
	})
	require.NoError(t, err)
	tr.RequestProblem(context.Background())

	h, err := tr.RevealHint()
	require.NoError(t, err)
	assert.Equal(t, problem.GenericHint, h.Text)
}

func TestRevealHint_BeforeProblem(t *testing.T) {
	tr, _ := newOffline(t, nil)
	_, err := tr.RevealHint()
	assert.ErrorIs(t, err, ErrNoProblem)
}

func TestEmptyAnswer_NoStateChange(t *testing.T) {
	grader := &fakeGrader{res: grading.Result{Correct: true, Feedback: "ok"}}
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles",
		Fallback: &fakeSource{problems: []*problem.Problem{waterProblem}},
		Grader:   grader,
	})
	require.NoError(t, err)
	ctx := context.Background()
	tr.RequestProblem(ctx)
	tr.RevealHint()
	before := tr.Snapshot()

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := tr.SubmitAnswer(ctx, blank)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	}

	assert.Equal(t, before, tr.Snapshot())
	assert.Empty(t, tr.History())
	assert.Zero(t, grader.callCount())
}

func TestSubmit_BeforeProblem(t *testing.T) {
	tr, _ := newOffline(t, nil)
	_, err := tr.SubmitAnswer(context.Background(), "104.5")
	assert.ErrorIs(t, err, ErrNoProblem)
}

func TestSubmit_TwiceWithoutNext(t *testing.T) {
	tr, _ := newOffline(t, nil)
	ctx := context.Background()
	tr.RequestProblem(ctx)
	_, err := tr.SubmitAnswer(ctx, "104.5")
	require.NoError(t, err)

	_, err = tr.SubmitAnswer(ctx, "104.5")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, tr.History(), 1)
}

func TestRemoteFailure_UsesSeedForPrimitive(t *testing.T) {
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles",
		Remote: &fakeSource{err: errDown},
	})
	require.NoError(t, err)

	p, err := tr.RequestProblem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, problem.OriginSeed, p.Origin)
	assert.Contains(t, problem.Seeds(problem.PrimitiveDirection), *p)
	assert.Equal(t, PhaseAwaitingAnswer, tr.Snapshot().Phase)
}

func TestRemoteFailure_UnknownPrimitiveUsesDirectionSeeds(t *testing.T) {
	tr, err := New(Config{
		Primitive: "ALCHEMY", Topic: "gold",
		Remote: &fakeSource{err: errDown},
	})
	require.NoError(t, err)

	p, err := tr.RequestProblem(context.Background())
	require.NoError(t, err)
	assert.Contains(t, problem.Seeds(problem.PrimitiveDirection), *p)
}

func TestRemoteGrader_Success(t *testing.T) {
	grader := &fakeGrader{res: grading.Result{Correct: false, Feedback: "Try again", MasteryProgress: 20}}
	rec := &memRecorder{}
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles",
		Fallback: &fakeSource{problems: []*problem.Problem{waterProblem}},
		Grader:   grader,
		Recorder: rec,
		Now:      fixedNow,
	})
	require.NoError(t, err)
	ctx := context.Background()
	tr.RequestProblem(ctx)
	tr.RevealHint()

	out, err := tr.SubmitAnswer(ctx, "  109 ")
	require.NoError(t, err)

	require.Equal(t, 1, grader.callCount())
	sub := grader.calls[0]
	assert.Equal(t, "DIRECTION_1700000000000", sub.ProblemID)
	assert.Equal(t, "109", sub.Answer)
	assert.Equal(t, 1, sub.HintsGiven)
	assert.Equal(t, "bond_angles", sub.Topic)

	assert.Equal(t, grading.KindRemote, out.Strategy)
	assert.Equal(t, "Try again", out.Feedback)
	assert.Equal(t, 20.0, out.MasteryProgress)
	// Worked example filled from the problem when the grader omitted it.
	assert.Equal(t, waterProblem.WorkedSolution, out.WorkedExample)

	require.Len(t, rec.attempts, 1)
	assert.Equal(t, grading.KindRemote, rec.attempts[0].Strategy)
	assert.Equal(t, tr.SessionID(), rec.attempts[0].SessionID)
}

func TestRemoteGrader_FailureGradesLocally(t *testing.T) {
	grader := &fakeGrader{err: errDown}
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles",
		Fallback: &fakeSource{problems: []*problem.Problem{waterProblem}},
		Grader:   grader,
	})
	require.NoError(t, err)
	ctx := context.Background()
	tr.RequestProblem(ctx)

	out, err := tr.SubmitAnswer(ctx, "104.5°")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, grading.KindLocal, out.Strategy)
	assert.Equal(t, "Correct! Great work.", out.Feedback)
	assert.Equal(t, 1, grader.callCount())
}

func TestGradingInProgress(t *testing.T) {
	grader := &fakeGrader{res: grading.Result{Correct: true, Feedback: "ok"}, gate: make(chan struct{})}
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles",
		Fallback: &fakeSource{problems: []*problem.Problem{waterProblem}},
		Grader:   grader,
	})
	require.NoError(t, err)
	ctx := context.Background()
	tr.RequestProblem(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := tr.SubmitAnswer(ctx, "104.5")
		done <- err
	}()

	require.Eventually(t, func() bool { return tr.Snapshot().Grading }, time.Second, time.Millisecond)

	_, err = tr.SubmitAnswer(ctx, "104.5")
	assert.ErrorIs(t, err, ErrGradingInProgress)
	_, err = tr.RevealHint()
	assert.ErrorIs(t, err, ErrGradingInProgress)
	_, err = tr.RequestProblem(ctx)
	assert.ErrorIs(t, err, ErrGradingInProgress)

	close(grader.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, grader.callCount())
	assert.Len(t, tr.History(), 1)
}

type blockingSource struct {
	gate chan struct{}
}

func (b *blockingSource) Problem(context.Context, problem.Request) (*problem.Problem, error) {
	<-b.gate
	cp := *waterProblem
	return &cp, nil
}

func TestLoadInProgress(t *testing.T) {
	src := &blockingSource{gate: make(chan struct{})}
	tr, err := New(Config{Primitive: "DIRECTION", Topic: "bond_angles", Remote: src})
	require.NoError(t, err)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := tr.RequestProblem(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return tr.Snapshot().Loading }, time.Second, time.Millisecond)

	_, err = tr.RequestProblem(ctx)
	assert.ErrorIs(t, err, ErrLoadInProgress)
	_, err = tr.SubmitAnswer(ctx, "104.5")
	assert.ErrorIs(t, err, ErrLoadInProgress)

	close(src.gate)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseAwaitingAnswer, tr.Snapshot().Phase)
}

func TestNextAndTrySimilar_Transitions(t *testing.T) {
	tr, _ := newOffline(t, nil)
	ctx := context.Background()

	_, err := tr.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	tr.RequestProblem(ctx)
	_, err = tr.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = tr.SubmitAnswer(ctx, "12")
	require.NoError(t, err)
	_, err = tr.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition, "next requires a correct answer")
	_, err = tr.TrySimilar(ctx)
	require.NoError(t, err)

	_, err = tr.SubmitAnswer(ctx, "104.5")
	require.NoError(t, err)
	_, err = tr.TrySimilar(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition, "try similar requires an incorrect answer")
	_, err = tr.Next(ctx)
	require.NoError(t, err)
}

func TestContinue_BeforeMastery(t *testing.T) {
	tr, _ := newOffline(t, nil)
	_, err := tr.Continue()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMasteryFill(t *testing.T) {
	tr, err := New(Config{
		Primitive: "DIRECTION", Topic: "bond_angles", MasteryTarget: 4,
		Fallback: &fakeSource{problems: []*problem.Problem{waterProblem}},
	})
	require.NoError(t, err)
	ctx := context.Background()
	tr.RequestProblem(ctx)

	for _, want := range []float64{25, 50, 75, 100} {
		out, err := tr.SubmitAnswer(ctx, "104.5")
		require.NoError(t, err)
		assert.InDelta(t, want, out.MasteryFill, 0.001)
		tr.Next(ctx)
	}
}

func TestHistory_IsCopy(t *testing.T) {
	tr, _ := newOffline(t, nil)
	ctx := context.Background()
	tr.RequestProblem(ctx)
	tr.SubmitAnswer(ctx, "90")

	h := tr.History()
	require.Len(t, h, 1)
	assert.Equal(t, "90", h[0].Answer)
	assert.False(t, h[0].Correct)
	assert.Equal(t, fixedNow(), h[0].Timestamp)
	h[0].Answer = "mutated"
	assert.Equal(t, "90", tr.History()[0].Answer)
}
