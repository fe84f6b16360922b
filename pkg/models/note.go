package models

import (
	"time"
)

const (
	// DefaultTitle is given to notes created without a title.
	DefaultTitle = "Untitled"
	// SeedID is the identifier of the note synthesized for an empty store.
	SeedID = "1"
	// SeedTitle is the title of the seed note.
	SeedTitle = "Welcome"
)

// SeedContent is the body of the seed note.
const SeedContent = `# Welcome

This is your first note. Notes are saved automatically while you type.

## Shortcuts
**ctrl+n** new note, **ctrl+w** close, **ctrl+s** save, *ctrl+p* preview.
`

// Note is a titled, timestamped unit of free-form text.
// The JSON keys match the persisted collection format.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	LastModified time.Time `json:"lastModified"`
}

// NewNote creates a Note with lastModified set to now.
func NewNote(id, title, content string, now time.Time) Note {
	return Note{
		ID:           id,
		Title:        title,
		Content:      content,
		LastModified: now.UTC(),
	}
}

// Seed returns the welcome note used when nothing has been persisted yet.
func Seed(now time.Time) Note {
	return NewNote(SeedID, SeedTitle, SeedContent, now)
}

// Touch updates LastModified (call before persisting an update).
func (n *Note) Touch(now time.Time) { n.LastModified = now.UTC() }

// Equal compares notes field by field, treating timestamps as instants.
func (n Note) Equal(o Note) bool {
	return n.ID == o.ID &&
		n.Title == o.Title &&
		n.Content == o.Content &&
		n.LastModified.Equal(o.LastModified)
}
