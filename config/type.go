package config

import "context"

// ConfigSource supplies one layer of prefsync's run settings.
//
// Sources are read once per run, in order, and later sources override
// earlier ones. Implementations exist for fixed defaults, a YAML settings
// file, environment variables and command-line flags.
type ConfigSource interface {
	// Load returns the settings held by this source as a string-keyed map.
	// Nested maps describe sections, e.g. {"log": {"level": "debug"}}.
	//
	// The returned map is owned by the caller.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in error messages, e.g. "file", "env".
	Name() string
}
