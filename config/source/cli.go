package source

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"github.com/skekre98/prefsync/config"
)

// CLISource exposes the flags a user actually set as a settings layer.
//
// Flags are mapped to setting keys through Keys; a flag missing from Keys
// uses its own name with dashes turned into dots, so --log-level becomes
// log.level. Flags left at their default are not reported, which lets
// lower layers (file, env) show through.
//
// Flags must be parsed before Load is called.
type CLISource struct {
	Flags *pflag.FlagSet
	Keys  map[string]string
}

var _ config.ConfigSource = (*CLISource)(nil)

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load never fails. Empty values are skipped.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	if c.Flags == nil {
		return result, nil
	}

	c.Flags.Visit(func(flag *pflag.Flag) {
		value := flag.Value.String()
		if value == "" {
			return
		}
		setNestedValue(result, strings.Split(c.key(flag.Name), "."), value)
	})

	return result, nil
}

func (c *CLISource) key(flagName string) string {
	if k, ok := c.Keys[flagName]; ok {
		return k
	}
	return strings.ReplaceAll(flagName, "-", ".")
}

// MapSource is a fixed settings layer, typically the defaults computed at
// startup (home directory, executable location).
type MapSource struct {
	Label string
	Data  map[string]any
}

var _ config.ConfigSource = (*MapSource)(nil)

// Name returns Label, or "map".
func (m *MapSource) Name() string {
	if m.Label == "" {
		return "map"
	}
	return m.Label
}

// Load returns a copy of Data.
func (m *MapSource) Load(ctx context.Context) (map[string]any, error) {
	return copyMap(m.Data), nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
