// Package topics is the topic picker: every primitive of the course with
// its topics, annotated with the learner's stored progress.
package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/router"
	"github.com/chemthink/chemthink/internal/screen"
	"github.com/chemthink/chemthink/internal/screens/practice"
	"github.com/chemthink/chemthink/internal/store"
	"github.com/chemthink/chemthink/internal/ui/components"
	"github.com/chemthink/chemthink/internal/ui/layout"
	"github.com/chemthink/chemthink/internal/ui/theme"
)

// SessionFunc starts a practice screen for a topic.
type SessionFunc func(primitive, topic string) (screen.Screen, error)

// ProgressFunc loads the learner's stored progress.
type ProgressFunc func(ctx context.Context) ([]store.Progress, error)

type progressLoadedMsg struct {
	Progress []store.Progress
	Err      error
}

type topicKey struct {
	primitive string
	topic     string
}

// TopicsScreen lists primitives and topics and starts practice sessions.
type TopicsScreen struct {
	start     SessionFunc
	progress  ProgressFunc
	status    string
	menu      components.Menu
	standings map[topicKey]store.Progress
	notice    string
	errMsg    string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)
var _ screen.StatusProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen. progress may be nil. status is shown in the
// header, typically the student ID.
func New(start SessionFunc, progress ProgressFunc, status string) *TopicsScreen {
	s := &TopicsScreen{
		start:     start,
		progress:  progress,
		status:    status,
		standings: make(map[topicKey]store.Progress),
	}
	s.rebuildMenu()
	return s
}

func (s *TopicsScreen) Init() tea.Cmd {
	return s.loadProgress()
}

func (s *TopicsScreen) Title() string {
	return "Topics"
}

func (s *TopicsScreen) Status() string {
	return s.status
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
	}
}

func (s *TopicsScreen) loadProgress() tea.Cmd {
	if s.progress == nil {
		return nil
	}
	load := s.progress
	return func() tea.Msg {
		rows, err := load(context.Background())
		return progressLoadedMsg{Progress: rows, Err: err}
	}
}

// Resume reloads progress after a practice session closes.
func (s *TopicsScreen) Resume() tea.Cmd {
	return s.loadProgress()
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		if msg.Err != nil {
			s.notice = "Progress unavailable: " + msg.Err.Error()
			return s, nil
		}
		for _, p := range msg.Progress {
			s.standings[topicKey{p.Primitive, p.Topic}] = p
		}
		s.rebuildMenu()
		return s, nil

	case practice.MasteryContinuedMsg:
		ev := msg.Event
		k := topicKey{ev.Primitive, ev.Topic}
		p := s.standings[k]
		p.Primitive, p.Topic = ev.Primitive, ev.Topic
		p.MasteryAchieved = true
		s.standings[k] = p
		s.notice = fmt.Sprintf("Mastered %s in %d attempts.", problem.TopicLabel(ev.Topic), ev.Attempts)
		s.rebuildMenu()
		return s, nil

	case tea.KeyMsg:
		s.errMsg = ""
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TopicsScreen) open(primitive, topic string) tea.Cmd {
	scr, err := s.start(primitive, topic)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: scr} }
}

// rebuildMenu lays out one disabled header row per primitive followed by
// its topics, keeping the current selection.
func (s *TopicsScreen) rebuildMenu() {
	var items []components.MenuItem
	for _, p := range problem.Primitives() {
		items = append(items, components.MenuItem{Label: string(p), Disabled: true})
		for _, t := range problem.Topics(p) {
			items = append(items, components.MenuItem{
				Label:  s.topicLabel(string(p), t),
				Action: func() tea.Cmd { return s.open(string(p), t) },
			})
		}
	}
	selected := s.menu.Selected
	s.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		s.menu.Selected = selected
	}
}

func (s *TopicsScreen) topicLabel(primitive, topic string) string {
	label := "  " + problem.TopicLabel(topic)
	p, ok := s.standings[topicKey{primitive, topic}]
	switch {
	case !ok:
		return label
	case p.MasteryAchieved:
		return label + "  ✓ mastered"
	case p.Attempts > 0:
		return fmt.Sprintf("%s  streak %d · %d attempts", label, p.Streak, p.Attempts)
	}
	return label
}

func (s *TopicsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Pick a topic to practice"))
	b.WriteString("\n")

	footer := ""
	switch {
	case s.errMsg != "":
		footer = lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)
	case s.notice != "":
		footer = theme.Hint.Render(s.notice)
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, footer))
	b.WriteString("\n\n")

	menuHeight := height - lipgloss.Height(b.String()) - 1
	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(s.menu.ViewHeight(menuHeight)))
	return b.String()
}
