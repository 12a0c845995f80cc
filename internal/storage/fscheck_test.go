package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWithProbeAllowsLocalFilesystem(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	err := checkWithProbe(dbPath, func(path string) (string, error) {
		return "ext4", nil
	})
	assert.NoError(t, err)
}

func TestCheckWithProbeRejectsNetworkFilesystem(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	err := checkWithProbe(dbPath, func(path string) (string, error) {
		return "smbfs", nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smbfs")
	assert.Contains(t, err.Error(), "SQLite requires a local filesystem")
	assert.Contains(t, err.Error(), "BOARDLINK_DIR")
}

func TestCheckWithProbeUsesClosestExistingPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dbPath := filepath.Join(root, "nested", "dir", "journal.db")

	var probed string
	err := checkWithProbe(dbPath, func(path string) (string, error) {
		probed = path
		return "apfs", nil
	})
	require.NoError(t, err)
	assert.Equal(t, root, probed)
}

func TestIsRemoteFilesystem(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fs   string
		want bool
	}{
		{name: "nfs", fs: "nfs", want: true},
		{name: "smbfs uppercase", fs: "SMBFS", want: true},
		{name: "local apfs", fs: "apfs", want: false},
		{name: "unknown hex magic", fs: "0x6969", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isRemoteFilesystem(tc.fs))
		})
	}
}
