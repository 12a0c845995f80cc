package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindInLocatesMarkedDrive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	board := filepath.Join(root, "user", "CIRCUITPY")
	require.NoError(t, os.MkdirAll(board, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(board, "boot_out.txt"), []byte("Adafruit CircuitPython"), 0o644))

	// An unmarked sibling drive must not match.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "user", "USBSTICK"), 0o755))

	got, err := findIn([]string{root})
	require.NoError(t, err)
	assert.Equal(t, board, got)
}

func TestFindInNoDevice(t *testing.T) {
	t.Parallel()

	_, err := findIn([]string{t.TempDir(), "/nonexistent-root"})
	assert.Error(t, err)
}

func TestFindInTopLevelMount(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	board := filepath.Join(root, "CIRCUITPY")
	require.NoError(t, os.MkdirAll(board, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(board, "boot_out.txt"), []byte("x"), 0o644))

	got, err := findIn([]string{root})
	require.NoError(t, err)
	assert.Equal(t, board, got)
}
