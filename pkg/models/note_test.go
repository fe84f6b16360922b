package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := Seed(now)
	assert.Equal(t, SeedID, n.ID)
	assert.Equal(t, SeedTitle, n.Title)
	assert.Contains(t, n.Content, "# Welcome")
	assert.True(t, n.LastModified.Equal(now))
}

func TestNoteJSONKeys(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := NewNote("abc", "Title", "body", now)
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, k := range []string{"id", "title", "content", "lastModified"} {
		assert.Contains(t, raw, k)
	}

	var back Note
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, n.Equal(back))
}

func TestTouchNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	n := Note{}
	now := time.Date(2024, 3, 1, 14, 0, 0, 0, loc)
	n.Touch(now)
	assert.Equal(t, time.UTC, n.LastModified.Location())
	assert.True(t, n.LastModified.Equal(now))
}
