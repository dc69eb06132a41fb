package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: lab-bench dark with element-flame accents
var (
	Primary   = lipgloss.Color("#38BDF8") // Copper-flame blue
	Secondary = lipgloss.Color("#A78BFA") // Potassium violet
	Accent    = lipgloss.Color("#FBBF24") // Sodium yellow
	Success   = lipgloss.Color("#4ADE80") // Green
	Error     = lipgloss.Color("#F87171") // Red
	Text      = lipgloss.Color("#F1F5F9") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0B1120") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)
)

// Styles is the style set owned by one practice screen. Build it with
// NewStyles; screens acquire it once when first mounted.
type Styles struct {
	Badge       lipgloss.Style
	BadgeTopic  lipgloss.Style
	Card        lipgloss.Style
	ProblemText lipgloss.Style
	Connection  lipgloss.Style
	HintLabel   lipgloss.Style
	HintText    lipgloss.Style
	Correct     lipgloss.Style
	Incorrect   lipgloss.Style
	Feedback    lipgloss.Style
	Worked      lipgloss.Style
	Mastery     lipgloss.Style
	Dim         lipgloss.Style
	Error       lipgloss.Style
	BarFilled   lipgloss.Style
	BarEmpty    lipgloss.Style
}

// NewStyles builds a fresh Styles from the palette.
func NewStyles() *Styles {
	return &Styles{
		Badge: lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 1),
		BadgeTopic: lipgloss.NewStyle().
			Background(Border).
			Foreground(Text).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2),
		ProblemText: lipgloss.NewStyle().
			Foreground(Text).
			Bold(true),
		Connection: lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true),
		HintLabel: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),
		HintText: lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true),
		Correct: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),
		Incorrect: lipgloss.NewStyle().
			Foreground(Error).
			Bold(true),
		Feedback: lipgloss.NewStyle().
			Foreground(Text),
		Worked: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Secondary).
			Foreground(TextDim).
			PaddingLeft(1),
		Mastery: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Accent).
			Foreground(Accent).
			Bold(true).
			Padding(1, 4).
			Align(lipgloss.Center),
		Dim: lipgloss.NewStyle().
			Foreground(TextDim),
		Error: lipgloss.NewStyle().
			Foreground(Error),
		BarFilled: lipgloss.NewStyle().
			Background(Success),
		BarEmpty: lipgloss.NewStyle().
			Background(Border),
	}
}
