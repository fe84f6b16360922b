package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/tabnote/internal/kv"
)

const (
	Dark  = "dark"
	Light = "light"
)

// DefaultKey is the storage key for the saved preference.
const DefaultKey = "theme"

// Applier receives the effective theme on load and on every change.
type Applier func(dark bool)

// SystemDark reports the terminal's background preference.
func SystemDark() bool { return lipgloss.HasDarkBackground() }

// Flag is the dark/light preference mirrored to a kv.Store.
type Flag struct {
	ctx   context.Context
	store kv.Store
	key   string

	mu    sync.Mutex
	dark  bool
	saved bool
	apply Applier
}

// Load reads the saved preference under key. Without a saved "dark" or
// "light" value the flag follows systemDark. apply may be nil.
func Load(ctx context.Context, store kv.Store, key string, systemDark func() bool, apply Applier) (*Flag, error) {
	if key == "" {
		key = DefaultKey
	}
	f := &Flag{ctx: ctx, store: store, key: key, apply: apply}
	v, err := store.Get(ctx, key)
	switch {
	case err == nil && (v == Dark || v == Light):
		f.dark = v == Dark
		f.saved = true
	case err == nil, errors.Is(err, kv.ErrNotFound), errors.Is(err, kv.ErrCorrupt):
		if systemDark != nil {
			f.dark = systemDark()
		}
	default:
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if apply != nil {
		apply(f.dark)
	}
	return f, nil
}

// Dark reports whether the dark theme is in effect.
func (f *Flag) Dark() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dark
}

// Saved reports whether the preference came from storage rather than the system.
func (f *Flag) Saved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

// Name returns "dark" or "light".
func (f *Flag) Name() string {
	if f.Dark() {
		return Dark
	}
	return Light
}

// SetApplier replaces the apply callback and invokes it with the current value.
func (f *Flag) SetApplier(apply Applier) {
	f.mu.Lock()
	f.apply = apply
	dark := f.dark
	f.mu.Unlock()
	if apply != nil {
		apply(dark)
	}
}

// Toggle flips the theme, applies and persists it.
func (f *Flag) Toggle() error {
	f.mu.Lock()
	dark := !f.dark
	f.mu.Unlock()
	return f.Set(dark)
}

// Set applies and persists an explicit theme.
func (f *Flag) Set(dark bool) error {
	f.mu.Lock()
	f.dark = dark
	f.saved = true
	apply := f.apply
	f.mu.Unlock()
	if apply != nil {
		apply(dark)
	}
	name := Light
	if dark {
		name = Dark
	}
	if err := f.store.Set(f.ctx, f.key, name); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Parse maps "dark"/"light" to a boolean.
func Parse(s string) (dark bool, ok bool) {
	switch s {
	case Dark:
		return true, true
	case Light:
		return false, true
	default:
		return false, false
	}
}
