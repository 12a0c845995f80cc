// Package settings holds the user's display preferences as a YAML file
// in the application directory. These options shape CLI output only;
// nothing in the link lifecycle reads them.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the parsed settings snapshot.
type Settings struct {
	Display DisplayConf `yaml:"display"`
}

type DisplayConf struct {
	Info  InfoConf  `yaml:"info"`
	Table TableConf `yaml:"table"`
}

type InfoConf struct {
	// ProcessID controls whether watcher pids appear in link tables.
	ProcessID bool `yaml:"process-id"`
}

type TableConf struct {
	// Format picks the table border style: rounded, plain, or markdown.
	Format string `yaml:"format"`
}

var validFormats = map[string]struct{}{
	"rounded":  {},
	"plain":    {},
	"markdown": {},
}

// Defaults returns the settings written on first use.
func Defaults() Settings {
	return Settings{
		Display: DisplayConf{
			Info:  InfoConf{ProcessID: false},
			Table: TableConf{Format: "rounded"},
		},
	}
}

func (s Settings) validate() error {
	if _, ok := validFormats[s.Display.Table.Format]; !ok {
		return fmt.Errorf("display.table.format %q is not one of rounded, plain, markdown", s.Display.Table.Format)
	}
	return nil
}

// File is a loaded settings file plus its document tree, kept so edits
// preserve comments and unknown keys.
type File struct {
	path     string
	settings Settings
	root     *yaml.Node
}

// Load reads the settings file at path, creating it with defaults when
// missing.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := Reset(path); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse settings document: %w", err)
	}
	return &File{path: path, settings: s, root: &root}, nil
}

// Reset writes the default settings over whatever is at path.
func Reset(path string) error {
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (f *File) Settings() Settings { return f.settings }
func (f *File) Path() string       { return f.path }

// Raw returns the file's text for display.
func (f *File) Raw() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read settings: %w", err)
	}
	return string(data), nil
}
