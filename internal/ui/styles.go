package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// Theme defines the colors of the calculator chat.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextBold lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Accent:    lipgloss.Color("#F59E0B"), // Amber

		Success: lipgloss.Color("#10B981"),
		Warning: lipgloss.Color("#F59E0B"),
		Error:   lipgloss.Color("#EF4444"),
		Muted:   lipgloss.Color("#6B7280"),

		Text:     lipgloss.Color("#F9FAFB"),
		TextDim:  lipgloss.Color("#9CA3AF"),
		TextBold: lipgloss.Color("#FFFFFF"),
	}
}

// Styles contains all the styled components for the UI.
type Styles struct {
	App lipgloss.Style

	Banner      lipgloss.Style
	BannerTitle lipgloss.Style

	Prompt lipgloss.Style

	// Messages
	Block        lipgloss.Style
	UserLabel    lipgloss.Style
	AssistLabel  lipgloss.Style
	Text         lipgloss.Style
	Emphasis     lipgloss.Style
	Attachment   lipgloss.Style
	Notice       lipgloss.Style
	NoticeError  lipgloss.Style
	Suggestion   lipgloss.Style
	SuggestIndex lipgloss.Style

	// Forms
	FormBox       lipgloss.Style
	FormBoxActive lipgloss.Style
	FieldLabel    lipgloss.Style
	FieldValue    lipgloss.Style
	FieldEmpty    lipgloss.Style
	Required      lipgloss.Style
	FormFooter    lipgloss.Style
	Submitted     lipgloss.Style

	// Results
	ResultBox    lipgloss.Style
	DetailLabel  lipgloss.Style
	DetailValue  lipgloss.Style
	Headline     lipgloss.Style
	SectionTitle lipgloss.Style

	Spinner    lipgloss.Style
	StatusText lipgloss.Style
	StateLabel lipgloss.Style

	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	HelpBar   lipgloss.Style

	theme Theme
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Banner: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 2),

		BannerTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		Block: lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(1),

		UserLabel: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		AssistLabel: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(t.Text),

		Emphasis: lipgloss.NewStyle().
			Foreground(t.TextBold).
			Bold(true),

		Attachment: lipgloss.NewStyle().
			Foreground(t.TextDim).
			Italic(true),

		Notice: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			PaddingLeft(2),

		NoticeError: lipgloss.NewStyle().
			Foreground(t.Error).
			PaddingLeft(2),

		Suggestion: lipgloss.NewStyle().
			Foreground(t.Secondary),

		SuggestIndex: lipgloss.NewStyle().
			Foreground(t.Muted),

		FormBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1).
			MarginTop(1),

		FormBoxActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1).
			MarginTop(1),

		FieldLabel: lipgloss.NewStyle().
			Foreground(t.TextDim),

		FieldValue: lipgloss.NewStyle().
			Foreground(t.Text).
			Bold(true),

		FieldEmpty: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),

		Required: lipgloss.NewStyle().
			Foreground(t.Error),

		FormFooter: lipgloss.NewStyle().
			Foreground(t.Muted),

		Submitted: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		ResultBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1).
			MarginTop(1),

		DetailLabel: lipgloss.NewStyle().
			Foreground(t.TextDim),

		DetailValue: lipgloss.NewStyle().
			Foreground(t.Text),

		Headline: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		SectionTitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			MarginTop(1),

		Spinner: lipgloss.NewStyle().
			Foreground(t.Primary),

		StatusText: lipgloss.NewStyle().
			Foreground(t.TextDim),

		StateLabel: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpValue: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),

		theme: t,
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// Quality returns the badge style for a result quality.
func (s Styles) Quality(q types.Quality) lipgloss.Style {
	color := s.theme.Muted
	switch q {
	case types.QualityExcellent, types.QualityGood:
		color = s.theme.Success
	case types.QualityAcceptable:
		color = s.theme.Warning
	case types.QualityPoor:
		color = s.theme.Error
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// Banner returns the title shown above the conversation.
func Banner() string {
	return "propcalc  ·  research planning calculators"
}
