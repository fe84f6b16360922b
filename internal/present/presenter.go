package present

import (
	"io"

	"github.com/mithrel/tabnote/internal/present/format"
	"github.com/mithrel/tabnote/pkg/models"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Dark       bool
	WordWrap   int
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	default:
		return ModePlain, false
	}
}

// RenderNotes renders the collection in tab order according to options.
func RenderNotes(w io.Writer, notes []models.Note, active string, opts Options) error {
	rows := format.Rows(notes, active)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONRows(w, rows, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONRows(w, rows)
	default:
		// Pretty list falls back to the plain table.
		return format.WritePlainRows(w, rows, opts.Headers)
	}
}

// RenderNote renders a single note according to options.
func RenderNote(w io.Writer, n models.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON, ModeNDJSON:
		return format.WriteJSONNote(w, n, opts.JSONIndent && opts.Mode == ModeJSON)
	case ModePretty:
		return format.WritePrettyNote(w, n, opts.Dark, opts.WordWrap)
	default:
		return format.WritePlainNote(w, n)
	}
}
