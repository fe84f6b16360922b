package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/tabnote/pkg/models"
)

func WriteJSONRows(w io.Writer, rows []Row, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rows)
}

func WriteJSONNote(w io.Writer, n models.Note, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(n)
}
