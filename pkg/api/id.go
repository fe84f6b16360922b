package api

import (
	"github.com/google/uuid"
)

// NewID returns a time-ordered UUIDv7 string. Falls back to a random v4 if
// the v7 generator fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
