package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// DefaultBindings maps action names to keys when the config leaves them unset.
var DefaultBindings = map[string][]string{
	"new":        {"ctrl+n"},
	"close":      {"ctrl+w"},
	"save":       {"ctrl+s"},
	"rename":     {"ctrl+r"},
	"preview":    {"ctrl+p"},
	"theme":      {"ctrl+t"},
	"next":       {"ctrl+pgdown"},
	"prev":       {"ctrl+pgup"},
	"move_right": {"alt+pgdown"},
	"move_left":  {"alt+pgup"},
	"copy":       {"ctrl+y"},
	"quit":       {"ctrl+q", "ctrl+c"},
}

type keyMap struct {
	New       key.Binding
	Close     key.Binding
	Save      key.Binding
	Rename    key.Binding
	Preview   key.Binding
	Theme     key.Binding
	Next      key.Binding
	Prev      key.Binding
	MoveRight key.Binding
	MoveLeft  key.Binding
	Copy      key.Binding
	Quit      key.Binding
}

func newKeyMap(cfg map[string][]string) keyMap {
	bind := func(name, desc string) key.Binding {
		keys := cfg[name]
		if len(keys) == 0 {
			keys = DefaultBindings[name]
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
	}
	return keyMap{
		New:       bind("new", "new"),
		Close:     bind("close", "close"),
		Save:      bind("save", "save"),
		Rename:    bind("rename", "rename"),
		Preview:   bind("preview", "preview"),
		Theme:     bind("theme", "theme"),
		Next:      bind("next", "next tab"),
		Prev:      bind("prev", "prev tab"),
		MoveRight: bind("move_right", "move right"),
		MoveLeft:  bind("move_left", "move left"),
		Copy:      bind("copy", "copy html"),
		Quit:      bind("quit", "quit"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Close, k.Save, k.Rename, k.Preview, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Close, k.Save, k.Rename},
		{k.Next, k.Prev, k.MoveRight, k.MoveLeft},
		{k.Preview, k.Theme, k.Copy, k.Quit},
	}
}
