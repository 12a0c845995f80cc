package settings

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GetPath retrieves a value using a dot-notation path, e.g.
// "display.table.format".
func (f *File) GetPath(path string) (any, error) {
	data, err := yaml.Marshal(f.settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return getValue(m, path)
}

// SetPath modifies a value at the dot-notation path. With persist set,
// the candidate file is written and re-loaded; a candidate that fails
// validation is rolled back.
func (f *File) SetPath(path, value string, persist bool) error {
	if f.root == nil || f.root.Kind != yaml.DocumentNode || len(f.root.Content) == 0 {
		return fmt.Errorf("no valid settings document")
	}

	target, err := findNode(f.root.Content[0], path, true)
	if err != nil {
		return fmt.Errorf("navigate path %q: %w", path, err)
	}
	target.Kind = yaml.ScalarNode
	target.Value = value
	target.Tag = guessTag(value)
	target.Content = nil

	if !persist {
		return nil
	}

	candidate, err := yaml.Marshal(f.root)
	if err != nil {
		return err
	}
	return f.persistWithValidation(candidate)
}

func (f *File) persistWithValidation(candidate []byte) error {
	original, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read original settings: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(f.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(f.path, candidate, mode); err != nil {
		return fmt.Errorf("persist settings change: %w", err)
	}

	loaded, err := Load(f.path)
	if err != nil {
		restoreErr := os.WriteFile(f.path, original, mode)
		if restoreErr != nil {
			return fmt.Errorf("validation failed (%v) and rollback failed (%v)", err, restoreErr)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	f.settings = loaded.settings
	return nil
}

func getValue(m map[string]any, path string) (any, error) {
	parts := strings.Split(path, ".")
	var current any = m

	for _, part := range parts {
		if part == "" {
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %q breaks at %q (not a map)", path, part)
		}
		val, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("path %q: key %q not found", path, part)
		}
		current = val
	}
	return current, nil
}

func findNode(node *yaml.Node, path string, create bool) (*yaml.Node, error) {
	parts := strings.Split(path, ".")
	current := node

	for _, part := range parts {
		if current.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("not a mapping node")
		}

		found := false
		for i := 0; i < len(current.Content); i += 2 {
			if current.Content[i].Value == part {
				current = current.Content[i+1]
				found = true
				break
			}
		}

		if !found {
			if !create {
				return nil, fmt.Errorf("key %q not found", part)
			}
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: part}
			valueNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			current.Content = append(current.Content, keyNode, valueNode)
			current = valueNode
		}
	}
	return current, nil
}

func guessTag(v string) string {
	if v == "true" || v == "false" {
		return "!!bool"
	}
	isDigit := true
	for i, c := range v {
		if i == 0 && c == '-' {
			continue
		}
		if c < '0' || c > '9' {
			isDigit = false
			break
		}
	}
	if isDigit && v != "" && v != "-" {
		return "!!int"
	}
	return "!!str"
}
