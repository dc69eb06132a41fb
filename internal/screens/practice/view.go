package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/tracker"
	"github.com/chemthink/chemthink/internal/ui/components"
	"github.com/chemthink/chemthink/internal/ui/layout"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *PracticeScreen) View(width, height int) string {
	st := s.Styles()
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Render("\n\n" + st.Error.Render("Error: "+s.errMsg) + "\n\n" + st.Dim.Render("Press Esc to go back"))
	}

	snap := s.tracker.Snapshot()
	cardWidth := min(width-4, 96)

	var b strings.Builder
	b.WriteString(s.renderBadges(snap, cardWidth))
	b.WriteString("\n")
	bar := components.NewMasteryBar("Mastery", snap.Streak, snap.MasteryTarget, cardWidth)
	bar.Styles = st
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	switch {
	case snap.Phase == tracker.PhaseMasteryComplete:
		b.WriteString(s.renderMastery(snap, cardWidth))
	case snap.Problem == nil || s.loading:
		b.WriteString(st.Dim.Render(s.spinner() + " Loading problem..."))
	default:
		b.WriteString(s.renderProblem(snap, cardWidth, layout.IsCompactHeight(height)))
		b.WriteString("\n")
		if snap.Phase == tracker.PhaseFeedback {
			b.WriteString(s.renderFeedback(snap, cardWidth))
		} else {
			b.WriteString(s.renderAnswer(snap))
		}
	}

	return lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(b.String())
}

func (s *PracticeScreen) renderBadges(snap tracker.Snapshot, width int) string {
	st := s.Styles()
	left := st.Badge.Render(snap.Primitive) + " " + st.BadgeTopic.Render(problem.TopicLabel(snap.Topic))
	right := st.Dim.Render(fmt.Sprintf("attempts %d", snap.Attempts))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *PracticeScreen) renderProblem(snap tracker.Snapshot, width int, compact bool) string {
	st := s.Styles()
	inner := width - 6

	var b strings.Builder
	b.WriteString(st.ProblemText.Width(inner).Render(snap.Problem.Text))
	if c := snap.Problem.ChemistryConnection; c != "" && !compact {
		b.WriteString("\n\n")
		b.WriteString(st.Connection.Width(inner).Render(c))
	}
	for _, h := range snap.Hints {
		b.WriteString("\n\n")
		b.WriteString(st.HintLabel.Render(fmt.Sprintf("Hint %d: ", h.Number)))
		b.WriteString(st.HintText.Render(h.Text))
	}
	return st.Card.Width(width).Render(b.String())
}

func (s *PracticeScreen) renderAnswer(snap tracker.Snapshot) string {
	st := s.Styles()
	var b strings.Builder
	b.WriteString(s.input.View())
	if snap.Grading {
		b.WriteString(" " + st.Dim.Render(s.spinner()))
	}
	if s.notice != "" {
		b.WriteString("\n" + st.Error.Render(s.notice))
	}
	return b.String()
}

func (s *PracticeScreen) renderFeedback(snap tracker.Snapshot, width int) string {
	st := s.Styles()
	res := snap.LastResult
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Correct {
		b.WriteString(st.Correct.Render("✓ Correct"))
	} else {
		b.WriteString(st.Incorrect.Render("✗ Not quite"))
	}
	if res.Strategy == grading.KindLocal {
		b.WriteString(st.Dim.Render("  (graded offline)"))
	}
	b.WriteString("\n")
	b.WriteString(st.Feedback.Width(width).Render(res.Feedback))

	if !res.Correct && res.WorkedExample != "" {
		b.WriteString("\n\n")
		b.WriteString(st.Worked.Width(width).Render("Worked example\n" + res.WorkedExample))
	}

	b.WriteString("\n\n")
	if res.Correct {
		b.WriteString(st.Dim.Render("Press n for the next problem"))
	} else {
		b.WriteString(st.Dim.Render("Press n to try a similar problem"))
	}
	return b.String()
}

func (s *PracticeScreen) renderMastery(snap tracker.Snapshot, width int) string {
	st := s.Styles()
	msg := fmt.Sprintf("⚗  Mastery complete!\n\n%d correct in a row on %s\n%d attempts this session",
		snap.Streak, problem.TopicLabel(snap.Topic), snap.Attempts)
	if s.lastOut != nil && s.lastOut.Feedback != "" {
		msg += "\n\n" + s.lastOut.Feedback
	}
	card := st.Mastery.Width(width).Render(msg)
	return card + "\n\n" + st.Dim.Render("Press c to continue")
}

func (s *PracticeScreen) spinner() string {
	return spinnerFrames[s.frame%len(spinnerFrames)]
}
