// Package layout draws the chrome around the active screen: a header bar
// with the app name, screen title and status, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/ui/theme"
)

// Smallest terminal the practice screen fits in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// Below this height the problem card drops its blank spacer lines.
const compactHeight = 30

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func IsCompactHeight(height int) bool {
	return height < compactHeight
}

// TooSmall explains the minimum size, centred in the terminal.
func TooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Terminal too small for chemthink.\n\nNeeds %dx%d, have %dx%d.",
			MinWidth, MinHeight, width, height))
}

// Chrome is the rendered header and footer for one frame.
type Chrome struct {
	Header string
	Footer string
}

// NewChrome renders the bars for a terminal width columns wide.
func NewChrome(title, status string, hints []KeyHint, width int) Chrome {
	return Chrome{
		Header: header(title, status, width),
		Footer: footer(hints, width),
	}
}

// BodyHeight is what is left of height between the bars.
func (c Chrome) BodyHeight(height int) int {
	return max(height-lipgloss.Height(c.Header)-lipgloss.Height(c.Footer), 0)
}

// Wrap places body between the bars, padded to fill the terminal.
func (c Chrome) Wrap(body string, width, height int) string {
	body = lipgloss.NewStyle().Width(width).Height(c.BodyHeight(height)).Render(body)
	return c.Header + "\n" + body + "\n" + c.Footer
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// header puts the app name on the left, the title centred and the status
// (primitive, student) on the right.
func header(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  chemthink")
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-4, 0)
	lead := max((inner-lipgloss.Width(mid))/2-lipgloss.Width(brand), 1)
	fill := max(inner-lipgloss.Width(brand)-lead-lipgloss.Width(mid)-lipgloss.Width(right), 1)

	return bar(width).Render(brand + strings.Repeat(" ", lead) + mid + strings.Repeat(" ", fill) + right)
}

func footer(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar(width).Render(b.String())
}
