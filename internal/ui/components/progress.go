package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/ui/theme"
)

// MasteryBar displays the streak toward a mastery target as a horizontal
// bar, optionally followed by "streak/target".
type MasteryBar struct {
	Label     string
	Streak    int
	Target    int
	ShowCount bool
	Width     int

	// Styles supplies the bar colors. Nil uses the theme palette.
	Styles *theme.Styles
}

// NewMasteryBar creates a new mastery bar.
func NewMasteryBar(label string, streak, target int, width int) MasteryBar {
	return MasteryBar{
		Label:     label,
		Streak:    streak,
		Target:    target,
		ShowCount: true,
		Width:     width,
	}
}

// Fraction returns the filled share of the bar in [0, 1].
func (p MasteryBar) Fraction() float64 {
	if p.Target <= 0 {
		return 0
	}
	f := float64(p.Streak) / float64(p.Target)
	return max(0, min(1, f))
}

// View renders the mastery bar.
func (p MasteryBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	count := ""
	if p.ShowCount {
		count = fmt.Sprintf("  %d/%d", min(p.Streak, p.Target), p.Target)
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	filledStyle := lipgloss.NewStyle().Background(theme.Success)
	emptyStyle := lipgloss.NewStyle().Background(theme.Border)
	if p.Styles != nil {
		filledStyle, emptyStyle = p.Styles.BarFilled, p.Styles.BarEmpty
	}

	result += filledStyle.Render(strings.Repeat(" ", filled)) +
		emptyStyle.Render(strings.Repeat(" ", empty))

	if p.ShowCount {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
	}

	return result
}
