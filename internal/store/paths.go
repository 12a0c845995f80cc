package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout is the on-disk shape of the application directory. Everything
// boardlink persists lives under one root so a single directory holds
// the full state of the system.
type Layout struct {
	Root string
}

// ResolveLayout picks the application directory: BOARDLINK_DIR if set,
// else XDG_DATA_HOME/boardlink, else ~/.local/share/boardlink.
func ResolveLayout() (Layout, error) {
	if dir := os.Getenv("BOARDLINK_DIR"); dir != "" {
		return Layout{Root: dir}, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return Layout{Root: filepath.Join(dir, "boardlink")}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Layout{Root: filepath.Join(home, ".local", "share", "boardlink")}, nil
}

func (l Layout) LinksDir() string        { return filepath.Join(l.Root, "links") }
func (l Layout) LinkPath(id int) string  { return filepath.Join(l.LinksDir(), fmt.Sprintf("link%d.json", id)) }
func (l Layout) CounterPath() string     { return filepath.Join(l.Root, "next_id") }
func (l Layout) CounterLockPath() string { return filepath.Join(l.Root, "next_id.lock") }
func (l Layout) ManagerLockPath() string { return filepath.Join(l.Root, "manager.lock") }
func (l Layout) JournalPath() string     { return filepath.Join(l.Root, "journal.db") }
func (l Layout) SettingsPath() string    { return filepath.Join(l.Root, "settings.yaml") }
func (l Layout) LogsDir() string         { return filepath.Join(l.Root, "logs") }
func (l Layout) LinkLogPath(id int) string {
	return filepath.Join(l.LogsDir(), fmt.Sprintf("link%d.log", id))
}
func (l Layout) LocksDir() string { return filepath.Join(l.Root, "locks") }
func (l Layout) LinkLockPath(id int) string {
	return filepath.Join(l.LocksDir(), fmt.Sprintf("link%d.lock", id))
}

// Ensure creates the directories the layout needs.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.LinksDir(), l.LogsDir(), l.LocksDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
