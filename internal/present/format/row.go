package format

import "github.com/mithrel/tabnote/pkg/models"

// Row is a note as listed: its tab position and whether it is selected.
type Row struct {
	models.Note
	Position int  `json:"position"`
	Active   bool `json:"active"`
}

// Rows numbers notes in display order and marks the active one.
func Rows(notes []models.Note, active string) []Row {
	out := make([]Row, len(notes))
	for i, n := range notes {
		out[i] = Row{Note: n, Position: i, Active: n.ID == active}
	}
	return out
}
