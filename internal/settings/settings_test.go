package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings.yaml")
}

func TestLoadCreatesDefaults(t *testing.T) {
	t.Parallel()

	path := settingsPath(t)
	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), f.Settings())
	assert.FileExists(t, path)
}

func TestLoadRejectsBadFormat(t *testing.T) {
	t.Parallel()

	path := settingsPath(t)
	require.NoError(t, os.WriteFile(path, []byte("display:\n  table:\n    format: fancy\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetPath(t *testing.T) {
	t.Parallel()

	f, err := Load(settingsPath(t))
	require.NoError(t, err)

	got, err := f.GetPath("display.table.format")
	require.NoError(t, err)
	assert.Equal(t, "rounded", got)

	got, err = f.GetPath("display.info.process-id")
	require.NoError(t, err)
	assert.Equal(t, false, got)

	_, err = f.GetPath("display.nope")
	assert.Error(t, err)
}

func TestSetPathPersists(t *testing.T) {
	t.Parallel()

	path := settingsPath(t)
	f, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, f.SetPath("display.table.format", "markdown", true))
	require.NoError(t, f.SetPath("display.info.process-id", "true", true))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "markdown", reloaded.Settings().Display.Table.Format)
	assert.True(t, reloaded.Settings().Display.Info.ProcessID)
}

func TestSetPathRollsBackInvalidValue(t *testing.T) {
	t.Parallel()

	path := settingsPath(t)
	f, err := Load(path)
	require.NoError(t, err)

	err = f.SetPath("display.table.format", "fancy", true)
	assert.Error(t, err)

	// The file on disk still parses with the old value.
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rounded", reloaded.Settings().Display.Table.Format)
}

func TestReset(t *testing.T) {
	t.Parallel()

	path := settingsPath(t)
	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.SetPath("display.table.format", "plain", true))

	require.NoError(t, Reset(path))
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), reloaded.Settings())
}
