// Package screen defines what the router and app frame need from a TUI
// screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/chemthink/chemthink/internal/ui/layout"
)

// Screen is one page of the TUI. View draws only the body; the app draws
// the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider screens list their keys in the footer.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider screens put a status on the right of the header.
type StatusProvider interface {
	Status() string
}

// Resumer screens are told when the screens above them close, so they
// can refresh what those screens changed.
type Resumer interface {
	Resume() tea.Cmd
}
