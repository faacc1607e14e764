package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a custom theme from a YAML document. Missing attributes
// fall back to the default theme's values before validation.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme file: %w", err)
	}

	t := Default()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// SaveFile writes the theme as a YAML document.
func SaveFile(t Theme, path string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write theme file: %w", err)
	}
	return nil
}

// Load resolves a theme reference: a built-in preset name first, then a
// path to a YAML file.
func Load(nameOrPath string) (Theme, error) {
	if t, err := Builtin(nameOrPath); err == nil {
		return t, nil
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return LoadFile(nameOrPath)
	}
	return Theme{}, fmt.Errorf("theme %q is neither a built-in preset nor a file", nameOrPath)
}
