// Package store reads and writes the documents prefsync works on: the JSON
// preferences file it updates and the YAML or TOML defaults it applies.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/skekre98/prefsync/prefs"
)

// ErrNotDocument is returned when a file does not hold a mapping at its top
// level.
var ErrNotDocument = errors.New("top-level value is not a mapping")

// JSONFile is a preferences file holding a single JSON object.
//
// A missing file reads as an empty document. Writes replace the whole file
// and create missing parent directories first.
type JSONFile struct {
	Path string
	// Pretty indents the output with two spaces.
	Pretty bool
}

// Name returns the identifier for this store.
func (f *JSONFile) Name() string { return "json:" + f.Path }

// Read loads the document. Numbers are kept in their textual form so large
// integers survive a round trip untouched.
func (f *JSONFile) Read(ctx context.Context) (prefs.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	doc, err := DecodeJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", f.Path, err)
	}
	return doc, nil
}

// Write replaces the file with doc.
func (f *JSONFile) Write(ctx context.Context, doc prefs.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, doc, f.Pretty); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := os.WriteFile(f.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// DecodeJSON reads one JSON object from r.
func DecodeJSON(r io.Reader) (prefs.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after top-level object")
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotDocument
	}
	return prefs.DocumentFromNative(m), nil
}

// EncodeJSON writes doc as JSON without escaping HTML characters. The output
// has no trailing newline, matching what browsers write.
func EncodeJSON(w io.Writer, doc prefs.Document, pretty bool) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc.Native()); err != nil {
		return err
	}
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// ResolveTarget maps a browser user-data directory to the preferences file of
// its default profile. Any other path is returned unchanged.
func ResolveTarget(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, "Default", "Preferences")
	}
	return path
}
