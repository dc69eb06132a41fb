package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/ui/theme"
)

// MenuItem is one row of a Menu. Disabled rows are headings: drawn but
// never selected.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list navigated with the arrow keys or j/k.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the selection by dir (+1 or -1) to the next enabled item and
// stays put when there is none.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.Selected = -1
		m.move(1)
	case "end", "G":
		m.Selected = len(m.Items)
		m.move(-1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

var (
	menuHeading  = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	menuItem     = lipgloss.NewStyle().Foreground(theme.Text)
)

func (m Menu) lines() []string {
	out := make([]string, len(m.Items))
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			out[i] = menuHeading.Render(it.Label)
		case i == m.Selected:
			out[i] = menuSelected.Render("  ▸ " + it.Label)
		default:
			out[i] = menuItem.Render("    " + it.Label)
		}
	}
	return out
}

func (m Menu) View() string {
	return strings.Join(m.lines(), "\n")
}

// ViewHeight renders at most height rows, scrolled so the selection stays
// near the middle. A height of zero or less renders every row.
func (m Menu) ViewHeight(height int) string {
	lines := m.lines()
	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	top := max(0, min(m.Selected-height/2, len(lines)-height))
	return strings.Join(lines[top:top+height], "\n")
}
