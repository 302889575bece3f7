package source

import (
	"context"
	"os"
	"strings"

	"github.com/skekre98/prefsync/config"
)

// DefaultEnvPrefix is used when EnvSource.Prefix is empty.
const DefaultEnvPrefix = "PREFSYNC_"

// EnvSource loads settings from environment variables.
//
// Variables must start with Prefix. The rest of the name is lowercased and
// split on underscores into a nested key:
//
//	PREFSYNC_PRETTY=true           -> {pretty: "true"}
//	PREFSYNC_SERIALIZE_DEPTH=3     -> {serialize: {depth: "3"}}
//	PREFSYNC_LOG_LEVEL=debug       -> {log: {level: "debug"}}
//
// All values are strings; the binder converts them.
//
// If a leaf already exists at a path, variables that would nest below it
// are skipped.
type EnvSource struct {
	Prefix string

	// Environ replaces os.Environ when set.
	Environ func() []string
}

var _ config.ConfigSource = (*EnvSource)(nil)

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load never fails; unrelated variables are ignored.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	environ := os.Environ
	if e.Environ != nil {
		environ = e.Environ
	}
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return loadEnvVars(environ(), prefix), nil
}

func loadEnvVars(environ []string, prefix string) map[string]any {
	result := make(map[string]any)

	for _, env := range environ {
		key, value, found := strings.Cut(env, "=")
		if !found {
			continue
		}

		if !strings.HasPrefix(key, prefix) {
			continue
		}

		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		if key == "" {
			continue
		}

		setNestedValue(result, strings.Split(key, "_"), value)
	}

	return result
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		if existing, exists := current[segment]; exists {
			if nested, ok := existing.(map[string]any); ok {
				current = nested
			} else {
				// a leaf already sits here
				return
			}
		} else {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
		}
	}
}
