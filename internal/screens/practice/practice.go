// Package practice is the mastery-practice screen: one problem at a time,
// hints on demand, feedback after each answer and a mastery card once the
// streak reaches the target.
package practice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/router"
	"github.com/chemthink/chemthink/internal/screen"
	"github.com/chemthink/chemthink/internal/tracker"
	"github.com/chemthink/chemthink/internal/ui/components"
	"github.com/chemthink/chemthink/internal/ui/layout"
	"github.com/chemthink/chemthink/internal/ui/theme"
)

const spinnerInterval = 100 * time.Millisecond

// Options configures a PracticeScreen.
type Options struct {
	Tracker *tracker.Tracker

	// Root marks a screen with no topic picker beneath it. Continuing after
	// mastery then quits instead of returning to the picker.
	Root bool

	Context context.Context
	Logger  *zap.Logger
}

// PracticeScreen implements screen.Screen for one practice session.
type PracticeScreen struct {
	tracker *tracker.Tracker
	ctx     context.Context
	log     *zap.Logger
	root    bool

	input components.TextInput

	// styles is acquired once, when the screen is first mounted.
	stylesOnce sync.Once
	styles     *theme.Styles

	loading  bool
	ticking  bool
	frame    int
	notice   string
	errMsg   string
	lastOut  *tracker.Outcome
	tickFunc func() tea.Cmd
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.StatusProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen around an existing tracker.
func New(opts Options) *PracticeScreen {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &PracticeScreen{
		tracker: opts.Tracker,
		ctx:     opts.Context,
		log:     opts.Logger,
		root:    opts.Root,
		input:   components.NewTextInput("Type your answer...", 120),
	}
	s.tickFunc = func() tea.Cmd {
		return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg { return spinnerTickMsg(t) })
	}
	return s
}

// Styles returns the screen's style set, building it on first use.
func (s *PracticeScreen) Styles() *theme.Styles {
	s.stylesOnce.Do(func() {
		s.styles = theme.NewStyles()
	})
	return s.styles
}

func (s *PracticeScreen) Init() tea.Cmd {
	s.Styles()
	return tea.Batch(
		s.input.Init(),
		s.load(s.tracker.RequestProblem),
		s.startSpinner(),
	)
}

func (s *PracticeScreen) Title() string {
	return "Practice"
}

func (s *PracticeScreen) Status() string {
	snap := s.tracker.Snapshot()
	return snap.Primitive + " · " + problem.TopicLabel(snap.Topic)
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	snap := s.tracker.Snapshot()
	switch snap.Phase {
	case tracker.PhaseAwaitingAnswer:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Tab", Description: "Hint"},
		}
	case tracker.PhaseFeedback:
		if snap.LastCorrect {
			return []layout.KeyHint{{Key: "n", Description: "Next problem"}}
		}
		return []layout.KeyHint{{Key: "n", Description: "Try a similar problem"}}
	case tracker.PhaseMasteryComplete:
		return []layout.KeyHint{{Key: "c", Description: "Continue"}}
	}
	return nil
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case problemLoadedMsg:
		return s.handleLoaded(msg)

	case gradedMsg:
		return s.handleGraded(msg)

	case spinnerTickMsg:
		snap := s.tracker.Snapshot()
		if !s.loading && !snap.Grading {
			s.ticking = false
			return s, nil
		}
		s.frame++
		return s, s.tickFunc()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.tracker.Snapshot().Phase == tracker.PhaseAwaitingAnswer {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, nil
	}

	key := msg.String()
	snap := s.tracker.Snapshot()

	switch snap.Phase {
	case tracker.PhaseAwaitingAnswer:
		switch key {
		case "enter":
			return s.submit()
		case "tab":
			return s.revealHint()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case tracker.PhaseFeedback:
		switch key {
		case "n", "enter":
			if snap.LastCorrect {
				return s, s.advance(s.tracker.Next)
			}
			return s, s.advance(s.tracker.TrySimilar)
		}

	case tracker.PhaseMasteryComplete:
		switch key {
		case "c", "enter":
			return s.continueAfterMastery()
		}
	}
	return s, nil
}

// submit grades the typed answer. The input stays locked until the result
// arrives, so repeated Enter presses cannot start a second request.
func (s *PracticeScreen) submit() (screen.Screen, tea.Cmd) {
	if s.input.Locked() {
		return s, nil
	}
	answer := s.input.Value()
	if strings.TrimSpace(answer) == "" {
		s.notice = "Type an answer first."
		return s, nil
	}
	s.notice = ""
	s.input.Lock()

	tr, ctx := s.tracker, s.ctx
	grade := func() tea.Msg {
		out, err := tr.SubmitAnswer(ctx, answer)
		return gradedMsg{Outcome: out, Err: err}
	}
	return s, tea.Batch(grade, s.startSpinner())
}

func (s *PracticeScreen) revealHint() (screen.Screen, tea.Cmd) {
	if s.input.Locked() {
		return s, nil
	}
	if _, err := s.tracker.RevealHint(); err != nil {
		s.log.Debug("hint rejected", zap.Error(err))
	}
	return s, nil
}

func (s *PracticeScreen) advance(next func(context.Context) (*problem.Problem, error)) tea.Cmd {
	if s.loading {
		return nil
	}
	return tea.Batch(s.load(next), s.startSpinner())
}

// load runs fn in a command and reports the problem it produced.
func (s *PracticeScreen) load(fn func(context.Context) (*problem.Problem, error)) tea.Cmd {
	s.loading = true
	ctx := s.ctx
	return func() tea.Msg {
		p, err := fn(ctx)
		return problemLoadedMsg{Problem: p, Err: err}
	}
}

func (s *PracticeScreen) startSpinner() tea.Cmd {
	if s.ticking {
		return nil
	}
	s.ticking = true
	return s.tickFunc()
}

func (s *PracticeScreen) handleLoaded(msg problemLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, tracker.ErrLoadInProgress), errors.Is(msg.Err, tracker.ErrGradingInProgress):
			s.log.Debug("load rejected", zap.Error(msg.Err))
		default:
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	s.lastOut = nil
	s.notice = ""
	s.input.Reset()
	return s, nil
}

func (s *PracticeScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.input.Unlock()
		switch {
		case errors.Is(msg.Err, tracker.ErrEmptyAnswer):
			s.notice = "Type an answer first."
		case errors.Is(msg.Err, tracker.ErrGradingInProgress):
			s.log.Debug("submit rejected", zap.Error(msg.Err))
		default:
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	out := msg.Outcome
	s.lastOut = &out
	return s, nil
}

func (s *PracticeScreen) continueAfterMastery() (screen.Screen, tea.Cmd) {
	ev, err := s.tracker.Continue()
	if err != nil {
		s.log.Debug("continue rejected", zap.Error(err))
		return s, nil
	}
	if s.root {
		return s, tea.Quit
	}
	return s, tea.Sequence(
		func() tea.Msg { return router.PopToRootMsg{} },
		func() tea.Msg { return MasteryContinuedMsg{Event: ev} },
	)
}
