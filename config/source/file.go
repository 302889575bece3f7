package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/prefsync/config"
)

// SettingsBasename is the file FileSource looks for when given a directory.
const SettingsBasename = "prefsync"

// FileSource loads settings from a YAML file.
//
// Path may name the file itself or a directory holding prefsync.yaml (or
// prefsync.yml). Keys mirror the dotted setting names:
//
//	source: /etc/prefsync/default_preferences.yml
//	pretty: true
//	serialize:
//	  gate: true
//	  depth: 2
type FileSource struct {
	Path string

	// Optional makes a missing file (or an empty Path) load as no settings.
	Optional bool
}

var _ config.ConfigSource = (*FileSource)(nil)

// Name returns the identifier for this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the settings file. Malformed YAML is always an error.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := f.Path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = findYAMLFile(path, SettingsBasename)
	}

	data := map[string]any{}
	if path == "" {
		if f.Optional {
			return data, nil
		}
		return nil, fmt.Errorf("settings file in %q: %w", f.Path, os.ErrNotExist)
	}

	if err := readYAML(path, data); err != nil {
		if f.Optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return data, nil
}

// findYAMLFile looks for a file with either .yaml or .yml extension
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}
	return nil
}
