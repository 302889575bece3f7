package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/skekre98/prefsync/prefs"
)

// Format is the syntax of a defaults document.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// SourceFile is a defaults document on disk. Unlike the preferences file it
// must exist and parse.
type SourceFile struct {
	Path   string
	Format Format
}

// OpenSource picks the defaults format from the file extension. Anything
// other than .toml is read as YAML.
func OpenSource(path string) *SourceFile {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return &SourceFile{Path: path, Format: FormatTOML}
	}
	return &SourceFile{Path: path, Format: FormatYAML}
}

// Name returns the identifier for this store.
func (f *SourceFile) Name() string { return f.Format.String() + ":" + f.Path }

// Load reads and parses the file. A YAML file that is empty or whose top
// level is not a mapping fails with ErrNotDocument.
func (f *SourceFile) Load(ctx context.Context) (prefs.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	var doc prefs.Document
	if f.Format == FormatTOML {
		doc, err = decodeTOML(b)
	} else {
		doc, err = decodeYAML(b)
	}
	if err != nil {
		return nil, fmt.Errorf("parse defaults %s: %w", f.Path, err)
	}
	return doc, nil
}

func decodeYAML(b []byte) (prefs.Document, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	switch m := raw.(type) {
	case map[string]any:
		return prefs.DocumentFromNative(m), nil
	case map[any]any:
		d, _ := prefs.FromNative(m).Document()
		return d, nil
	default:
		return nil, ErrNotDocument
	}
}

func decodeTOML(b []byte) (prefs.Document, error) {
	raw := map[string]any{}
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return prefs.DocumentFromNative(raw), nil
}
