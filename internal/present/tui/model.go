package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/tabnote/internal/notes"
	"github.com/mithrel/tabnote/internal/present/format"
	"github.com/mithrel/tabnote/internal/render"
	"github.com/mithrel/tabnote/internal/theme"
)

// Renderer names for the preview pane.
const (
	PreviewGlamour = "glamour"
	PreviewHTML    = "html"
)

// Options configures the TUI.
type Options struct {
	Notes    *notes.Store
	Theme    *theme.Flag
	Keys     map[string][]string
	Renderer string
	WordWrap int
	// Copy writes text to the clipboard; defaults to the system clipboard.
	Copy func(string) error
	Log  *slog.Logger
	// Notices raised before the TUI started, shown first.
	Notices []notes.Notice
}

// noticeMsg carries a store notice into Update.
type noticeMsg notes.Notice

// Model is the tabbed editor.
type Model struct {
	store *notes.Store
	theme *theme.Flag
	keys  keyMap
	help  help.Model
	st    styles
	log   *slog.Logger
	copy  func(string) error

	editor  textarea.Model
	preview viewport.Model
	rename  *renameModal

	showPreview bool
	renderer    string
	wrap        int

	inbox    chan notes.Notice
	status   notes.Notice
	loadedID string
	// baseline is the editor text last loaded or forwarded to the store.
	baseline string

	width, height int
	quitting      bool
}

// New builds the model and attaches it to the store's notices.
func New(opts Options) Model {
	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.Prompt = ""
	ed.SetWidth(80)
	ed.SetHeight(20)
	ed.Focus()

	m := Model{
		store:    opts.Notes,
		theme:    opts.Theme,
		keys:     newKeyMap(opts.Keys),
		help:     help.New(),
		st:       newStyles(),
		log:      opts.Log,
		copy:     opts.Copy,
		editor:   ed,
		preview:  viewport.New(80, 20),
		renderer: strings.ToLower(opts.Renderer),
		wrap:     opts.WordWrap,
		inbox:    make(chan notes.Notice, 32),
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	if m.copy == nil {
		m.copy = clipboard.WriteAll
	}
	if m.renderer == "" {
		m.renderer = PreviewGlamour
	}
	if m.theme != nil {
		m.theme.SetApplier(lipgloss.SetHasDarkBackground)
	}
	inbox := m.inbox
	m.store.SetNotifier(func(n notes.Notice) {
		select {
		case inbox <- n:
		default:
		}
	})
	for _, n := range opts.Notices {
		m.status = n
	}
	m.syncEditor(true)
	return m
}

// Run opens the TUI on the terminal until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if ferr := opts.Notes.Flush(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	return err
}

func waitNotice(ch <-chan notes.Notice) tea.Cmd {
	return func() tea.Msg { return noticeMsg(<-ch) }
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitNotice(m.inbox))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if m.rename != nil {
			m.rename.resizeForTerm(msg.Width, msg.Height)
		}
		return m, nil
	case noticeMsg:
		m.status = notes.Notice(msg)
		return m, waitNotice(m.inbox)
	case tea.KeyMsg:
		if m.rename != nil {
			return m.updateRename(msg)
		}
		if handled, cmd := m.handleKey(msg); handled {
			m.drain()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.showPreview {
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); v != m.baseline {
		m.baseline = v
		m.fail(m.store.EditContent(m.loadedID, v))
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.fail(m.store.Flush())
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.New):
		_, err := m.store.Create()
		m.fail(err)
		m.syncEditor(false)
	case key.Matches(msg, m.keys.Close):
		if id := m.store.ActiveID(); id != "" {
			_, err := m.store.Close(id)
			m.fail(err)
			m.syncEditor(false)
		}
	case key.Matches(msg, m.keys.Save):
		m.fail(m.store.ManualSave())
	case key.Matches(msg, m.keys.Rename):
		if n, ok := m.store.Active(); ok {
			m.rename = newRenameModal(n.ID, n.Title, m.width, m.height)
			return true, textinput.Blink
		}
	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		if m.showPreview {
			m.editor.Blur()
		} else {
			m.editor.Focus()
		}
		m.refreshPreview()
	case key.Matches(msg, m.keys.Theme):
		if m.theme != nil {
			m.fail(m.theme.Toggle())
			m.status = notes.Notice{Kind: notes.NoticeInfo, Text: "Theme: " + m.theme.Name()}
			m.refreshPreview()
		}
	case key.Matches(msg, m.keys.Next):
		m.step(1)
	case key.Matches(msg, m.keys.Prev):
		m.step(-1)
	case key.Matches(msg, m.keys.MoveRight):
		m.move(1)
	case key.Matches(msg, m.keys.MoveLeft):
		m.move(-1)
	case key.Matches(msg, m.keys.Copy):
		m.copyHTML()
	default:
		return false, nil
	}
	return true, nil
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.rename = nil
		return m, nil
	case tea.KeyEnter:
		m.fail(m.store.Rename(m.rename.id, m.rename.value()))
		m.rename = nil
		m.drain()
		return m, nil
	}
	return m, m.rename.update(msg)
}

// step selects the neighbouring tab, wrapping around.
func (m *Model) step(delta int) {
	list := m.store.Notes()
	if len(list) < 2 {
		return
	}
	i := m.store.Index(m.store.ActiveID())
	next := (i + delta + len(list)) % len(list)
	m.fail(m.store.SwitchActive(list[next].ID))
	m.syncEditor(false)
}

// move shifts the active tab one position without wrapping.
func (m *Model) move(delta int) {
	i := m.store.Index(m.store.ActiveID())
	to := i + delta
	if i < 0 || to < 0 || to >= m.store.Len() {
		return
	}
	m.fail(m.store.Reorder(i, to))
}

func (m *Model) copyHTML() {
	n, ok := m.store.Active()
	if !ok {
		return
	}
	if err := m.copy(render.HTML(n.Content)); err != nil {
		m.fail(fmt.Errorf("copy: %w", err))
		return
	}
	m.status = notes.Notice{Kind: notes.NoticeInfo, Text: fmt.Sprintf("Copied HTML of %q", n.Title)}
}

// syncEditor loads the active note into the editor when the selection
// changed, or always when force is set.
func (m *Model) syncEditor(force bool) {
	n, ok := m.store.Active()
	if !ok {
		return
	}
	if !force && n.ID == m.loadedID {
		return
	}
	m.loadedID = n.ID
	m.editor.SetValue(n.Content)
	m.baseline = m.editor.Value()
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	if !m.showPreview {
		return
	}
	n, _ := m.store.Active()
	if m.renderer == PreviewHTML {
		m.preview.SetContent(render.HTML(n.Content))
		return
	}
	wrap := m.wrap
	if m.preview.Width > 2 && (wrap <= 0 || wrap > m.preview.Width-2) {
		wrap = m.preview.Width - 2
	}
	dark := m.theme != nil && m.theme.Dark()
	out, err := format.Glamour(n.Content, dark, wrap)
	if err != nil {
		m.log.Warn("preview render failed", "error", err)
		out = n.Content
	}
	m.preview.SetContent(out)
	m.preview.GotoTop()
}

// drain moves notices already queued by the store into the status line.
func (m *Model) drain() {
	for {
		select {
		case n := <-m.inbox:
			m.status = n
		default:
			return
		}
	}
}

func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	m.log.Error("operation failed", "error", err)
	m.status = notes.Notice{Kind: notes.NoticeWarning, Text: err.Error()}
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	// tab bar (2 lines), status, help
	body := max(m.height-4, 3)
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(body)
	m.preview.Width = m.width
	m.preview.Height = body
	m.help.Width = m.width
	m.refreshPreview()
}

func (m Model) statusLine() string {
	if m.status.Text == "" {
		return ""
	}
	if m.status.Kind == notes.NoticeWarning {
		return m.st.warning.Render(m.status.Text)
	}
	return m.st.status.Render(m.status.Text)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	tabs := renderTabs(m.st, m.store.Notes(), m.store.ActiveID(), m.store.Dirty, m.width)
	body := m.editor.View()
	if m.showPreview {
		body = m.st.preview.Render(m.preview.View())
	}
	base := tabs + "\n" + body + "\n" + m.statusLine() + "\n" + m.help.View(m.keys)
	if m.rename != nil {
		return m.renderOverlay(base, m.rename.View(), m.rename.width, m.rename.height)
	}
	return base
}
