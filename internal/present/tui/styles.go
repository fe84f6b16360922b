package tui

import "github.com/charmbracelet/lipgloss"

// Colors adapt to lipgloss' dark-background flag, which the theme toggles.
type styles struct {
	tab       lipgloss.Style
	activeTab lipgloss.Style
	bar       lipgloss.Style
	status    lipgloss.Style
	warning   lipgloss.Style
	preview   lipgloss.Style
}

func newStyles() styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	accent := lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#A58BFF"}
	text := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E4E4E4"}
	return styles{
		tab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(subtle),
		activeTab: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(text).
			Underline(true).
			UnderlineSpaces(false),
		bar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle),
		status:  lipgloss.NewStyle().Foreground(accent),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6E6E"}).
			Bold(true),
		preview: lipgloss.NewStyle().Padding(0, 1),
	}
}
