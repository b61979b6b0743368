package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors used by the watch TUI and results renderer.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary   lipgloss.Color // title, run name
	Secondary lipgloss.Color // grader names
	Error     lipgloss.Color // failed items, errors
	Warning   lipgloss.Color // in-progress status
	Success   lipgloss.Color // passed items
	Info      lipgloss.Color // report URL
	Text      lipgloss.Color // primary text
	TextMuted lipgloss.Color // secondary text, hints
	Border    lipgloss.Color // separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#fab283"),
		Secondary: lipgloss.Color("#5c9cf5"),
		Error:     lipgloss.Color("#e06c75"),
		Warning:   lipgloss.Color("#f5a742"),
		Success:   lipgloss.Color("#7fd88f"),
		Info:      lipgloss.Color("#56b6c2"),
		Text:      lipgloss.Color("#eeeeee"),
		TextMuted: lipgloss.Color("#808080"),
		Border:    lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#b35c00"),
		Secondary: lipgloss.Color("#0550ae"),
		Error:     lipgloss.Color("#cf222e"),
		Warning:   lipgloss.Color("#bf8700"),
		Success:   lipgloss.Color("#116329"),
		Info:      lipgloss.Color("#0969da"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
		Border:    lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	grader lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
	text   lipgloss.Style
	link   lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		header: lipgloss.NewStyle().Foreground(t.Border),
		grader: lipgloss.NewStyle().Foreground(t.Secondary),
		pass:   lipgloss.NewStyle().Foreground(t.Success),
		fail:   lipgloss.NewStyle().Foreground(t.Error),
		warn:   lipgloss.NewStyle().Foreground(t.Warning),
		err:    lipgloss.NewStyle().Foreground(t.Error),
		dim:    lipgloss.NewStyle().Foreground(t.TextMuted),
		text:   lipgloss.NewStyle().Foreground(t.Text),
		link:   lipgloss.NewStyle().Foreground(t.Info).Underline(true),
	}
}
