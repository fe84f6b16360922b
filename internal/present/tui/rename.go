package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// renameModal edits a note title inside a rounded box.
type renameModal struct {
	id     string
	input  textinput.Model
	width  int
	height int
	box    lipglossv2.Style
}

func newRenameModal(id, title string, termW, termH int) *renameModal {
	in := textinput.New()
	in.Placeholder = "Note title"
	in.Prompt = "> "
	in.CharLimit = 120
	in.SetValue(title)
	in.CursorEnd()
	in.Focus()
	m := &renameModal{id: id, input: in}
	m.resizeForTerm(termW, termH)
	return m
}

func (m *renameModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := min(max(termW/2, 36), termW-2)
	m.width, m.height = w, 7
	m.box = lipglossv2.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))
	m.input.Width = max(w-2-4-len(m.input.Prompt)-1, 10)
}

func (m *renameModal) update(msg tea.Msg) tea.Cmd {
	if x, ok := msg.(tea.WindowSizeMsg); ok {
		m.resizeForTerm(x.Width, x.Height)
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *renameModal) value() string { return m.input.Value() }

func (m *renameModal) View() string {
	return m.box.Render("Rename note\n\n" + m.input.View() + "\n\nenter apply • esc cancel")
}
