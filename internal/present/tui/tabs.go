package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mithrel/tabnote/pkg/models"
)

const (
	pendingMark = "•"
	minTabTitle = 6
	maxTabTitle = 24
)

// tabTitleWidth splits the terminal width across tabs within fixed bounds.
func tabTitleWidth(width, count int) int {
	if count == 0 || width <= 0 {
		return maxTabTitle
	}
	// padding plus separator
	w := width/count - 4
	return min(max(w, minTabTitle), maxTabTitle)
}

// renderTabs draws the tab bar in store order. dirty reports notes with
// unsaved edits.
func renderTabs(st styles, list []models.Note, active string, dirty func(string) bool, width int) string {
	limit := tabTitleWidth(width, len(list))
	parts := make([]string, 0, len(list))
	for _, n := range list {
		title := ansi.Truncate(n.Title, limit, "…")
		if dirty != nil && dirty(n.ID) {
			title = pendingMark + " " + title
		}
		s := st.tab
		if n.ID == active {
			s = st.activeTab
		}
		parts = append(parts, s.Render(title))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if width > 0 && ansi.StringWidth(row) > width {
		row = ansi.Truncate(row, width, "…")
	}
	return st.bar.Render(strings.TrimRight(row, " "))
}
