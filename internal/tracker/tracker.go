// Package tracker runs one mastery-practice session for a (primitive, topic)
// pair: it fetches problems with a seed fallback, grades answers remotely
// with a local fallback, discloses hints, and detects mastery.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
)

// Config wires a Tracker to its collaborators.
type Config struct {
	Primitive string
	Topic     string

	// MasteryTarget defaults to DefaultMasteryTarget when zero.
	MasteryTarget int

	// Remote is tried first for every problem. Nil means offline.
	Remote problem.Source

	// Fallback serves problems when Remote is nil or fails. Defaults to
	// problem.NewSeedSource().
	Fallback problem.Source

	// Grader is tried first for every answer. Nil means offline.
	Grader grading.Strategy

	// LocalGrader grades when Grader is nil or fails. Defaults to
	// grading.Local.
	LocalGrader grading.Strategy

	// Recorder persists attempts, hints and mastery. Optional.
	Recorder Recorder

	// OnMastery receives the mastery-complete event. Optional.
	OnMastery func(MasteryEvent)

	Logger *zap.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Tracker is the state machine of one practice session. It is safe for
// concurrent use; network calls run without holding the lock.
type Tracker struct {
	mu sync.Mutex

	sessionID string
	primitive string
	topic     string
	target    int

	remote    problem.Source
	fallback  problem.Source
	grader    grading.Strategy
	local     grading.Strategy
	recorder  Recorder
	onMastery func(MasteryEvent)
	log       *zap.Logger
	now       func() time.Time

	phase      Phase
	current    *problem.Problem
	hintsGiven int
	hints      []Hint
	streak     int
	history    []Attempt
	lastResult *grading.Result
	grading    bool
	loading    bool
	mastered   bool
}

// New creates a Tracker in PhaseLoading. Call RequestProblem to load the
// first problem.
func New(cfg Config) (*Tracker, error) {
	if strings.TrimSpace(cfg.Primitive) == "" {
		return nil, errors.New("tracker: primitive is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("tracker: topic is required")
	}
	if cfg.MasteryTarget == 0 {
		cfg.MasteryTarget = DefaultMasteryTarget
	}
	if cfg.MasteryTarget < 1 {
		return nil, fmt.Errorf("tracker: mastery target must be at least 1, got %d", cfg.MasteryTarget)
	}
	if cfg.Fallback == nil {
		cfg.Fallback = problem.NewSeedSource()
	}
	if cfg.LocalGrader == nil {
		cfg.LocalGrader = grading.Local{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	sessionID := uuid.New().String()
	return &Tracker{
		sessionID: sessionID,
		primitive: cfg.Primitive,
		topic:     cfg.Topic,
		target:    cfg.MasteryTarget,
		remote:    cfg.Remote,
		fallback:  cfg.Fallback,
		grader:    cfg.Grader,
		local:     cfg.LocalGrader,
		recorder:  cfg.Recorder,
		onMastery: cfg.OnMastery,
		log: cfg.Logger.With(
			zap.String("session_id", sessionID),
			zap.String("primitive", cfg.Primitive),
			zap.String("topic", cfg.Topic),
		),
		now:   cfg.Now,
		phase: PhaseLoading,
	}, nil
}

// SessionID identifies this session in persisted records.
func (t *Tracker) SessionID() string { return t.sessionID }

// RequestProblem loads the next problem. The remote source is tried first;
// any failure falls back to the seed set, so RequestProblem only returns an
// error when the request is not allowed in the current state.
func (t *Tracker) RequestProblem(ctx context.Context) (*problem.Problem, error) {
	t.mu.Lock()
	if err := t.checkLoadAllowedLocked(); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	return t.loadLocked(ctx)
}

// Next moves from a correct answer's feedback to a new problem.
func (t *Tracker) Next(ctx context.Context) (*problem.Problem, error) {
	return t.advance(ctx, true, "next")
}

// TrySimilar moves from an incorrect answer's feedback to a new problem.
func (t *Tracker) TrySimilar(ctx context.Context) (*problem.Problem, error) {
	return t.advance(ctx, false, "try similar")
}

func (t *Tracker) advance(ctx context.Context, wantCorrect bool, name string) (*problem.Problem, error) {
	t.mu.Lock()
	if err := t.checkLoadAllowedLocked(); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if t.phase != PhaseFeedback || t.lastResult == nil || t.lastResult.Correct != wantCorrect {
		phase := t.phase
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, phase)
	}
	return t.loadLocked(ctx)
}

func (t *Tracker) checkLoadAllowedLocked() error {
	switch {
	case t.mastered:
		return ErrMasteryComplete
	case t.loading:
		return ErrLoadInProgress
	case t.grading:
		return ErrGradingInProgress
	}
	return nil
}

// loadLocked is entered with t.mu held and releases it.
func (t *Tracker) loadLocked(ctx context.Context) (*problem.Problem, error) {
	req := problem.Request{
		Primitive:  t.primitive,
		Topic:      t.topic,
		Difficulty: problem.Difficulty(t.streak),
	}
	if t.current != nil {
		prev := t.current.Text
		req.PreviousProblem = &prev
	}
	t.loading = true
	t.phase = PhaseLoading
	t.hintsGiven = 0
	t.hints = nil
	t.lastResult = nil
	t.mu.Unlock()

	p := t.fetch(ctx, req)

	t.mu.Lock()
	t.current = p
	t.phase = PhaseAwaitingAnswer
	t.loading = false
	t.mu.Unlock()

	cp := *p
	return &cp, nil
}

func (t *Tracker) fetch(ctx context.Context, req problem.Request) *problem.Problem {
	if t.remote != nil {
		p, err := t.remote.Problem(ctx, req)
		if err == nil && p != nil {
			return p
		}
		if err == nil {
			err = errors.New("empty problem")
		}
		t.log.Warn("problem fetch failed, using seed problem",
			zap.Int("difficulty", req.Difficulty),
			zap.Error(err))
	}

	p, err := t.fallback.Problem(ctx, req)
	if err != nil || p == nil {
		// Custom fallback sources may fail; the built-in seeds cannot.
		t.log.Error("fallback problem source failed", zap.Error(err))
		p, _ = problem.NewSeedSource().Problem(ctx, req)
	}
	return p
}

// SubmitAnswer grades raw against the current problem. A blank answer
// returns ErrEmptyAnswer without changing state.
func (t *Tracker) SubmitAnswer(ctx context.Context, raw string) (Outcome, error) {
	answer := strings.TrimSpace(raw)

	t.mu.Lock()
	switch {
	case t.mastered:
		t.mu.Unlock()
		return Outcome{}, ErrMasteryComplete
	case t.grading:
		t.mu.Unlock()
		return Outcome{}, ErrGradingInProgress
	case t.loading:
		t.mu.Unlock()
		return Outcome{}, ErrLoadInProgress
	case t.current == nil:
		t.mu.Unlock()
		return Outcome{}, ErrNoProblem
	case t.phase != PhaseAwaitingAnswer:
		phase := t.phase
		t.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, phase)
	}
	if answer == "" {
		t.mu.Unlock()
		return Outcome{}, ErrEmptyAnswer
	}

	now := t.now()
	sub := grading.Submission{
		ProblemID:  fmt.Sprintf("%s_%d", t.primitive, now.UnixMilli()),
		Problem:    *t.current,
		Answer:     answer,
		Primitive:  t.primitive,
		Topic:      t.topic,
		HintsGiven: t.hintsGiven,
	}
	t.grading = true
	t.mu.Unlock()

	res := t.grade(ctx, sub)
	if !res.Correct && res.WorkedExample == "" {
		res.WorkedExample = sub.Problem.WorkedSolution
	}

	t.mu.Lock()
	t.history = append(t.history, Attempt{
		Problem:   sub.Problem,
		Answer:    answer,
		Correct:   res.Correct,
		Timestamp: now,
	})
	if res.Correct {
		t.streak++
	} else {
		t.streak = 0
	}
	reached := res.Correct && t.streak >= t.target
	if reached {
		t.mastered = true
		t.phase = PhaseMasteryComplete
	} else {
		t.phase = PhaseFeedback
	}
	stored := res
	t.lastResult = &stored
	t.grading = false

	out := Outcome{
		Result:         res,
		Streak:         t.streak,
		MasteryFill:    t.fillLocked(),
		Phase:          t.phase,
		MasteryReached: reached,
	}
	event := t.eventLocked()
	t.mu.Unlock()

	if err := t.recorder.RecordAttempt(ctx, AttemptRecord{
		SessionID:     t.sessionID,
		Primitive:     t.primitive,
		Topic:         t.topic,
		ProblemText:   sub.Problem.Text,
		StudentAnswer: answer,
		CorrectAnswer: sub.Problem.CorrectAnswer,
		Correct:       res.Correct,
		Feedback:      res.Feedback,
		Strategy:      res.Strategy,
		HintsGiven:    sub.HintsGiven,
		MasteryTarget: t.target,
		Timestamp:     now,
	}); err != nil {
		t.log.Warn("record attempt failed", zap.Error(err))
	}

	if reached {
		t.log.Info("mastery complete",
			zap.Int("attempts", event.Attempts),
			zap.Int("streak", event.Streak))
		if err := t.recorder.RecordMastery(ctx, MasteryRecord{
			SessionID:    t.sessionID,
			MasteryEvent: event,
			Timestamp:    now,
		}); err != nil {
			t.log.Warn("record mastery failed", zap.Error(err))
		}
		if t.onMastery != nil {
			t.onMastery(event)
		}
	}

	return out, nil
}

func (t *Tracker) grade(ctx context.Context, sub grading.Submission) grading.Result {
	if t.grader != nil {
		res, err := t.grader.Grade(ctx, sub)
		if err == nil {
			if res.Strategy == "" {
				res.Strategy = t.grader.Kind()
			}
			return res
		}
		t.log.Warn("remote grading failed, grading locally", zap.Error(err))
	}

	res, err := t.local.Grade(ctx, sub)
	if err != nil {
		t.log.Error("local grading failed", zap.Error(err))
		res, _ = grading.Local{}.Grade(ctx, sub)
	}
	if res.Strategy == "" {
		res.Strategy = t.local.Kind()
	}
	return res
}

// RevealHint discloses the next hint for the current problem.
func (t *Tracker) RevealHint() (Hint, error) {
	t.mu.Lock()
	switch {
	case t.mastered:
		t.mu.Unlock()
		return Hint{}, ErrMasteryComplete
	case t.grading:
		t.mu.Unlock()
		return Hint{}, ErrGradingInProgress
	case t.current == nil:
		t.mu.Unlock()
		return Hint{}, ErrNoProblem
	case t.phase != PhaseAwaitingAnswer:
		phase := t.phase
		t.mu.Unlock()
		return Hint{}, fmt.Errorf("%w: hint from %s", ErrInvalidTransition, phase)
	}

	t.hintsGiven++
	h := Hint{Number: t.hintsGiven, Text: t.current.Hint(t.hintsGiven)}
	t.hints = append(t.hints, h)
	rec := HintRecord{
		SessionID:   t.sessionID,
		Primitive:   t.primitive,
		Topic:       t.topic,
		ProblemText: t.current.Text,
		HintNumber:  h.Number,
		HintText:    h.Text,
		Timestamp:   t.now(),
	}
	t.mu.Unlock()

	if err := t.recorder.RecordHint(context.Background(), rec); err != nil {
		t.log.Warn("record hint failed", zap.Error(err))
	}
	return h, nil
}

// Continue returns the mastery payload. It is only valid once mastery has
// been reached and does not restart the session.
func (t *Tracker) Continue() (MasteryEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mastered {
		return MasteryEvent{}, fmt.Errorf("%w: continue from %s", ErrInvalidTransition, t.phase)
	}
	return t.eventLocked(), nil
}

// History returns a copy of the attempts made so far.
func (t *Tracker) History() []Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Attempt, len(t.history))
	copy(out, t.history)
	return out
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		SessionID:     t.sessionID,
		Primitive:     t.primitive,
		Topic:         t.topic,
		Phase:         t.phase,
		HintsGiven:    t.hintsGiven,
		Streak:        t.streak,
		MasteryTarget: t.target,
		MasteryFill:   t.fillLocked(),
		Attempts:      len(t.history),
		Grading:       t.grading,
		Loading:       t.loading,
	}
	if t.current != nil {
		p := *t.current
		s.Problem = &p
	}
	if len(t.hints) > 0 {
		s.Hints = make([]Hint, len(t.hints))
		copy(s.Hints, t.hints)
	}
	if t.lastResult != nil {
		r := *t.lastResult
		s.LastResult = &r
		s.LastCorrect = r.Correct
	}
	return s
}

func (t *Tracker) fillLocked() float64 {
	return min(100, float64(t.streak)/float64(t.target)*100)
}

func (t *Tracker) eventLocked() MasteryEvent {
	return MasteryEvent{
		Primitive: t.primitive,
		Topic:     t.topic,
		Attempts:  len(t.history),
		Streak:    t.streak,
	}
}
