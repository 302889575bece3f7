package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/prefsync/prefs"
)

func TestJSONFile_ReadMissing(t *testing.T) {
	t.Parallel()

	f := &JSONFile{Path: filepath.Join(t.TempDir(), "Default", "Preferences")}
	doc, err := f.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prefs.Document{}, doc)
}

func TestJSONFile_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    prefs.Document
		wantErr bool
	}{
		{
			name:    "nested object",
			content: `{"x":{"y":"0","z":"keep"},"n":12345678901234567890}`,
			want: prefs.Document{
				"x": prefs.Doc(prefs.Document{"y": prefs.Scalar("0"), "z": prefs.Scalar("keep")}),
				"n": prefs.Scalar(json.Number("12345678901234567890")),
			},
		},
		{
			name:    "empty object",
			content: `{}`,
			want:    prefs.Document{},
		},
		{
			name:    "top-level array",
			content: `[1,2]`,
			wantErr: true,
		},
		{
			name:    "malformed",
			content: `{"x":`,
			wantErr: true,
		},
		{
			name:    "trailing value",
			content: `{} {}`,
			wantErr: true,
		},
		{
			name:    "empty file",
			content: ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "Preferences")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := (&JSONFile{Path: path}).Read(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONFile_ReadNotDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Preferences")
	require.NoError(t, os.WriteFile(path, []byte(`"str"`), 0o644))

	_, err := (&JSONFile{Path: path}).Read(context.Background())
	assert.True(t, errors.Is(err, ErrNotDocument))
}

func TestJSONFile_WriteCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "Preferences")
	doc := prefs.Document{"x": prefs.Doc(prefs.Document{"y": prefs.Scalar("1")})}

	require.NoError(t, (&JSONFile{Path: path}).Write(context.Background(), doc))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"x":{"y":"1"}}`, string(b))
}

func TestJSONFile_WritePretty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Preferences.json")
	doc := prefs.Document{"a": prefs.Scalar("<b>"), "c": prefs.Doc(prefs.Document{"d": prefs.Scalar("é")})}

	require.NoError(t, (&JSONFile{Path: path, Pretty: true}).Write(context.Background(), doc))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"<b>\",\n  \"c\": {\n    \"d\": \"é\"\n  }\n}", string(b))
}

func TestJSONFile_WriteOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Preferences")
	require.NoError(t, os.WriteFile(path, []byte(`{"old":"value","padding":"xxxxxxxxxxxxxxxx"}`), 0o644))

	require.NoError(t, (&JSONFile{Path: path}).Write(context.Background(), prefs.Document{"new": prefs.Scalar("1")}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"new":"1"}`, string(b))
}

func TestJSONFile_RoundTripKeepsNumbers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Preferences")
	in := `{"big":13312345678901234567,"f":0.1,"s":"x"}`
	require.NoError(t, os.WriteFile(path, []byte(in), 0o644))

	f := &JSONFile{Path: path}
	doc, err := f.Read(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.Write(context.Background(), doc))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, string(b))
}

func TestJSONFile_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &JSONFile{Path: filepath.Join(t.TempDir(), "Preferences")}
	_, err := f.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.Write(ctx, prefs.Document{}), context.Canceled)
}

func TestEncodeJSON_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, prefs.Document{"b": prefs.Scalar(true), "a": prefs.List()}, false))
	assert.Equal(t, `{"a":[],"b":true}`, buf.String())
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "Default", "Preferences"), ResolveTarget(dir))

	file := filepath.Join(dir, "Preferences")
	assert.Equal(t, file, ResolveTarget(file))
}
