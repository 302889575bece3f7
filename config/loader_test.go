package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/prefsync/config"
	"github.com/skekre98/prefsync/prefs"
)

// mockSource is a test implementation of config.ConfigSource
type mockSource struct {
	name   string
	data   map[string]any
	errVal error
	loads  int
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Load(ctx context.Context) (map[string]any, error) {
	m.loads++
	if m.errVal != nil {
		return nil, m.errVal
	}
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func TestLoader_Settings(t *testing.T) {
	t.Parallel()

	defaults := &mockSource{name: "defaults", data: map[string]any{
		"source": "/opt/prefsync/default_preferences.yml",
		"target": "/home/u/.config/google-chrome/Default/Preferences",
	}}
	file := &mockSource{name: "file", data: map[string]any{
		"pretty":    true,
		"serialize": map[string]any{"gate": true, "depth": 3},
		"log":       map[string]any{"level": "warn"},
	}}
	cli := &mockSource{name: "cli", data: map[string]any{
		"target": "/tmp/Preferences",
		"log":    map[string]any{"level": "debug"},
	}}

	got, err := config.NewLoader(defaults, file, cli).Settings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.Settings{
		Source: "/opt/prefsync/default_preferences.yml",
		Target: "/tmp/Preferences",
		Pretty: true,
		Serialize: config.SerializeSettings{
			Lists:     prefs.ListsEncode,
			Gate:      true,
			Namespace: prefs.DefaultGateNamespace,
			Depth:     intPtr(3),
		},
		Log: config.LogSettings{Level: "debug", Format: "text"},
	}, got)
}

func TestLoader_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("unreadable")
	later := &mockSource{name: "later"}
	_, err := config.NewLoader(&mockSource{name: "file", errVal: boom}, later).Settings(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "file")
	assert.Equal(t, 0, later.loads)
}

func TestLoader_ValidationError(t *testing.T) {
	t.Parallel()

	src := &mockSource{name: "defaults", data: map[string]any{"source": "defaults.yml"}}
	_, err := config.NewLoader(src).Settings(context.Background())

	var bindErr *config.BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "validate", bindErr.Stage)
}

func TestLoader_ExplicitZeroDepthRejected(t *testing.T) {
	t.Parallel()

	src := &mockSource{name: "cli", data: map[string]any{
		"source":    "defaults.yml",
		"target":    "Preferences",
		"serialize": map[string]any{"gate": true, "depth": 0},
	}}
	_, err := config.NewLoader(src).Settings(context.Background())

	var bindErr *config.BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "validate", bindErr.Stage)
}

func TestLoader_UnsetDepthDefaults(t *testing.T) {
	t.Parallel()

	src := &mockSource{name: "cli", data: map[string]any{
		"source":    "defaults.yml",
		"target":    "Preferences",
		"serialize": map[string]any{"gate": true},
	}}
	s, err := config.NewLoader(src).Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &prefs.Gate{Namespace: "devtools", Depth: 2}, s.Serializer().Gate)
}

func TestLoader_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &mockSource{name: "defaults"}
	_, err := config.NewLoader(src).Settings(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.loads)
}

func TestLoader_LoadCustomStruct(t *testing.T) {
	t.Parallel()

	type exportConfig struct {
		Path   string `config:"path" validate:"required"`
		Pretty bool   `config:"pretty"`
	}

	var got exportConfig
	err := config.NewLoader(
		&mockSource{name: "a", data: map[string]any{"path": "/a"}},
		&mockSource{name: "b", data: map[string]any{"pretty": "yes"}},
	).Load(context.Background(), &got)

	// "yes" is not a bool for strconv.ParseBool.
	require.Error(t, err)

	err = config.NewLoader(
		&mockSource{name: "a", data: map[string]any{"path": "/a"}},
		&mockSource{name: "b", data: map[string]any{"pretty": "true"}},
	).Load(context.Background(), &got)
	require.NoError(t, err)
	assert.Equal(t, exportConfig{Path: "/a", Pretty: true}, got)
}

func TestSettings_Serializer(t *testing.T) {
	t.Parallel()

	s := config.DefaultSettings()
	assert.Equal(t, prefs.Serializer{Lists: prefs.ListsEncode}, s.Serializer())

	s.Serialize.Gate = true
	assert.Equal(t, prefs.Serializer{
		Lists: prefs.ListsEncode,
		Gate:  &prefs.Gate{Namespace: "devtools", Depth: 2},
	}, s.Serializer())
}

func TestSettings_ApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	s := config.Settings{
		Serialize: config.SerializeSettings{Lists: prefs.ListsRecurse, Namespace: "custom"},
		Log:       config.LogSettings{Format: "json"},
	}
	require.NoError(t, s.ApplyDefaults())

	assert.Equal(t, prefs.ListsRecurse, s.Serialize.Lists)
	assert.Equal(t, "custom", s.Serialize.Namespace)
	require.NotNil(t, s.Serialize.Depth)
	assert.Equal(t, prefs.DefaultGateDepth, *s.Serialize.Depth)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
}
