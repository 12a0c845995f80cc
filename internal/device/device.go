// Package device locates an attached CircuitPython board by scanning
// conventional removable-media mount roots for the boot_out.txt marker
// the firmware writes at the drive root.
package device

import (
	"fmt"
	"os"
	"path/filepath"
)

const markerFile = "boot_out.txt"

// Finder resolves the mount path of an attached device.
type Finder func() (string, error)

// mountRoots are the directories removable drives show up under, in
// probe order.
var mountRoots = []string{
	"/media",
	"/run/media",
	"/Volumes",
	"/mnt",
}

// Find scans the mount roots for a drive carrying the marker file. The
// first match wins.
func Find() (string, error) {
	return findIn(mountRoots)
}

func findIn(roots []string) (string, error) {
	for _, root := range roots {
		candidates, err := collectMounts(root)
		if err != nil {
			continue
		}
		for _, c := range candidates {
			if _, err := os.Stat(filepath.Join(c, markerFile)); err == nil {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("no mounted drive carries %s", markerFile)
}

// collectMounts lists root's directories plus one nested level, since
// Linux mounts removable media under /media/<user>/<label>.
func collectMounts(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		out = append(out, dir)
		nested, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, n := range nested {
			if n.IsDir() {
				out = append(out, filepath.Join(dir, n.Name()))
			}
		}
	}
	return out, nil
}
