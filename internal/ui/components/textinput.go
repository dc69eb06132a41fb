package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chemthink/chemthink/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with chemthink styling. A locked input
// ignores key presses; the practice screen locks it while an answer is
// being graded.
type TextInput struct {
	Model  textinput.Model
	locked bool
}

// NewTextInput creates a new focused text input. charLimit <= 0 means no
// limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		if _, ok := msg.(tea.KeyMsg); ok {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.locked {
		view += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("grading...")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Lock stops the input from accepting keys.
func (t *TextInput) Lock() {
	t.locked = true
}

// Unlock reopens the input.
func (t *TextInput) Unlock() {
	t.locked = false
}

// Locked reports whether key presses are ignored.
func (t TextInput) Locked() bool {
	return t.locked
}

// Reset clears the value and unlocks the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.locked = false
}
