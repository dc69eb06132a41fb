package components

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/chemthink/chemthink/internal/ui/theme"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMasteryBar_Fraction(t *testing.T) {
	tests := []struct {
		streak, target int
		want           float64
	}{
		{0, 3, 0},
		{3, 3, 1},
		{5, 3, 1},
		{1, 4, 0.25},
		{2, 0, 0},
	}
	for _, tt := range tests {
		got := NewMasteryBar("", tt.streak, tt.target, 40).Fraction()
		if got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.streak, tt.target, got, tt.want)
		}
	}
}

func TestMasteryBar_View(t *testing.T) {
	bar := NewMasteryBar("Mastery", 2, 3, 40)
	bar.Styles = theme.NewStyles()
	view := bar.View()
	if !strings.Contains(view, "Mastery") {
		t.Errorf("view missing label: %q", view)
	}
	if !strings.Contains(view, "2/3") {
		t.Errorf("view missing count: %q", view)
	}

	// The count never shows more than the target.
	over := NewMasteryBar("", 7, 3, 40).View()
	if !strings.Contains(over, "3/3") {
		t.Errorf("view = %q, want clamped 3/3", over)
	}
}

func TestMenu_Navigation(t *testing.T) {
	picked := ""
	pick := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			picked = name
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "header", Disabled: true},
		{Label: "moles", Action: pick("moles")},
		{Label: "gap", Disabled: true},
		{Label: "kinetics", Action: pick("kinetics")},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Fatalf("Selected = %d after down, want 3 (disabled skipped)", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want to stay on last item", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyEnter))
	if picked != "kinetics" {
		t.Errorf("picked = %q, want kinetics", picked)
	}

	m, _ = m.Update(keyPress('k'))
	if m.Selected != 1 {
		t.Errorf("Selected = %d after k, want 1", m.Selected)
	}
	if !strings.Contains(m.View(), "moles") {
		t.Error("view missing item label")
	}

	m, _ = m.Update(specialKey(tea.KeyEnd))
	if m.Selected != 3 {
		t.Errorf("Selected = %d after End, want last enabled item 3", m.Selected)
	}
	m, _ = m.Update(keyPress('g'))
	if m.Selected != 1 {
		t.Errorf("Selected = %d after g, want first enabled item 1", m.Selected)
	}
}

func TestMenu_HeadingsNeverSelected(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "DIRECTION", Disabled: true}})
	m, cmd := m.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("enter on a heading should do nothing")
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 0 {
		t.Errorf("Selected = %d", m.Selected)
	}
	if strings.Contains(m.View(), "▸") {
		t.Errorf("heading drawn as selected: %q", m.View())
	}
}

func TestTextInput_Lock(t *testing.T) {
	ti := NewTextInput("answer", 0)

	ti.Lock()
	ti, _ = ti.Update(keyPress('a'))
	if ti.Value() != "" {
		t.Errorf("locked input accepted a key: %q", ti.Value())
	}
	if !ti.Locked() {
		t.Error("expected Locked() after Lock")
	}
	if !strings.Contains(ti.View(), "grading") {
		t.Error("locked view should show the grading marker")
	}

	ti.Unlock()
	ti, _ = ti.Update(keyPress('a'))
	if ti.Value() != "a" {
		t.Errorf("Value = %q, want %q", ti.Value(), "a")
	}

	ti.Lock()
	ti.Reset()
	if ti.Value() != "" || ti.Locked() {
		t.Errorf("Reset left value %q locked=%v", ti.Value(), ti.Locked())
	}
}

func TestMenu_ViewHeight(t *testing.T) {
	items := make([]MenuItem, 10)
	for i := range items {
		items[i] = MenuItem{Label: fmt.Sprintf("item-%d", i)}
	}
	m := NewMenu(items)
	m.Selected = 9

	view := m.ViewHeight(4)
	if got := strings.Count(view, "\n") + 1; got != 4 {
		t.Errorf("rendered %d lines, want 4", got)
	}
	if !strings.Contains(view, "item-9") {
		t.Error("selected item scrolled out of view")
	}
	if strings.Contains(view, "item-0") {
		t.Error("top item should be scrolled away")
	}

	if full := m.ViewHeight(0); !strings.Contains(full, "item-0") {
		t.Error("height 0 should render everything")
	}
}
