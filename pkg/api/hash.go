package api

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/mithrel/tabnote/pkg/models"
)

// Digest returns the hex BLAKE3 hash of s.
func Digest(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NoteHash returns a deterministic BLAKE3 hash of a note.
// It covers ID, Title, Content and LastModified (UTC).
func NoteHash(n models.Note) string {
	h := blake3.New()

	h.Write([]byte(n.ID))
	h.Write([]byte{0})

	h.Write([]byte(n.Title))
	h.Write([]byte{0})

	h.Write([]byte(n.Content))
	h.Write([]byte{0})

	if !n.LastModified.IsZero() {
		h.Write([]byte(n.LastModified.UTC().Format(timeRFC3339Nano)))
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

const timeRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"
