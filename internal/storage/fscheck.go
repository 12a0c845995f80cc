package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fsProbe reports the filesystem type name for an existing path.
type fsProbe func(path string) (string, error)

// remoteTypes are filesystem names whose flock/fcntl semantics are too
// weak for SQLite.
var remoteTypes = map[string]struct{}{
	"afpfs":  {},
	"cifs":   {},
	"nfs":    {},
	"smbfs":  {},
	"smb2":   {},
	"webdav": {},
}

// CheckLocalFilesystem rejects journal paths that land on a network
// filesystem, where SQLite locking is unreliable.
func CheckLocalFilesystem(path string) error {
	return checkWithProbe(path, detectFilesystemType)
}

func checkWithProbe(path string, probe fsProbe) error {
	if path == "" {
		return fmt.Errorf("sqlite path is empty")
	}

	probePath, err := closestExisting(path)
	if err != nil {
		return fmt.Errorf("resolve database path %q: %w", path, err)
	}

	fsType, err := probe(probePath)
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", probePath, err)
	}

	if isRemoteFilesystem(fsType) {
		return fmt.Errorf(
			"journal path %q is on network filesystem %q; SQLite requires a local filesystem for reliable locking. Point BOARDLINK_DIR at local disk",
			path,
			fsType,
		)
	}

	return nil
}

// closestExisting walks up from path until it finds a component that
// exists, so a not-yet-created journal file can still be probed.
func closestExisting(path string) (string, error) {
	candidate, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	for {
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return "", fmt.Errorf("stat %q: %w", candidate, statErr)
		}

		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", fmt.Errorf("no existing parent for %q", path)
		}
		candidate = parent
	}
}

func isRemoteFilesystem(fsType string) bool {
	_, found := remoteTypes[strings.TrimSpace(strings.ToLower(fsType))]
	return found
}
