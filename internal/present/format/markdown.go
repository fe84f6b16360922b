package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/tabnote/pkg/models"
)

// GlamourStyle names the standard glamour style for a theme.
func GlamourStyle(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

// NewRenderer builds a glamour renderer for the theme. wrap <= 0 disables wrapping.
func NewRenderer(dark bool, wrap int) (*glamour.TermRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(GlamourStyle(dark)),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// Glamour renders markdown to ANSI text.
func Glamour(md string, dark bool, wrap int) (string, error) {
	r, err := NewRenderer(dark, wrap)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// WritePrettyNote renders a single note with a metadata header using glamour.
func WritePrettyNote(w io.Writer, n models.Note, dark bool, wrap int) error {
	ts := n.LastModified.Local().Format(time.RFC3339)
	md := fmt.Sprintf(`# %s

> **ID:** %s | **Modified:** %s

---

%s
`, n.Title, n.ID, ts, strings.TrimSpace(n.Content))

	out, err := Glamour(md, dark, wrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
