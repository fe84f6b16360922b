package wire

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/tabnote/internal/config"
	"github.com/mithrel/tabnote/internal/notes"
	"github.com/mithrel/tabnote/pkg/models"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		DataDir:       dir,
		StorageURL:    "sqlite://" + filepath.Join(dir, "tabnote.db"),
		NotesKey:      "notes",
		ActiveKey:     "lastActiveNote",
		ThemeKey:      "theme",
		AutosaveDelay: time.Hour,
		LogLevel:      "debug",
		LogFile:       filepath.Join(dir, "logs", "tabnote.log"),
	}
}

func TestBuildAppSeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	var logs bytes.Buffer

	app, err := BuildApp(ctx, cfg, WithLogWriter(&logs), WithSystemDark(func() bool { return false }))
	require.NoError(t, err)
	assert.Equal(t, models.SeedID, app.Notes.ActiveID())
	assert.False(t, app.Theme.Dark())
	assert.Contains(t, logs.String(), "storage opened")

	require.NoError(t, app.Notes.EditContent(models.SeedID, "kept on close"))
	require.NoError(t, app.Close())

	app, err = BuildApp(ctx, cfg, WithLogWriter(&logs))
	require.NoError(t, err)
	defer app.Close()
	n, ok := app.Notes.Active()
	require.True(t, ok)
	assert.Equal(t, "kept on close", n.Content)
}

func TestBuildAppCollectsLoadNotices(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := BuildApp(ctx, cfg, WithLogWriter(&bytes.Buffer{}))
	require.NoError(t, err)
	require.NoError(t, app.KV.Set(ctx, "notes", "{broken"))
	require.NoError(t, app.Close())

	app, err = BuildApp(ctx, cfg, WithLogWriter(&bytes.Buffer{}))
	require.NoError(t, err)
	defer app.Close()
	got := app.DrainNotices()
	require.Len(t, got, 1)
	assert.Equal(t, notes.NoticeWarning, got[0].Kind)
	assert.Empty(t, app.DrainNotices())
}

func TestBuildAppWritesLogFile(t *testing.T) {
	cfg := testConfig(t)
	app, err := BuildApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.Close())
	assert.FileExists(t, cfg.LogFile)
}

func TestBuildAppRejectsUnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageURL = "redis://localhost"
	_, err := BuildApp(context.Background(), cfg, WithLogWriter(&bytes.Buffer{}))
	require.Error(t, err)
}
