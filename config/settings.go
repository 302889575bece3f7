package config

import (
	"dario.cat/mergo"

	"github.com/skekre98/prefsync/prefs"
)

// Settings is the resolved configuration of one prefsync run.
type Settings struct {
	// Source is the defaults document (YAML or TOML).
	Source string `config:"source" validate:"required"`
	// Target is the preferences file or a browser user-data directory.
	Target string `config:"target" validate:"required"`
	Pretty bool   `config:"pretty"`
	// Export, when set, receives an indented copy of the updated preferences.
	Export string `config:"export"`

	Serialize SerializeSettings `config:"serialize"`
	Log       LogSettings       `config:"log"`
	Metrics   MetricsSettings   `config:"metrics"`
}

type SerializeSettings struct {
	Lists     prefs.ListMode `config:"lists" validate:"omitempty,oneof=encode recurse"`
	Gate      bool           `config:"gate"`
	Namespace string         `config:"namespace"`
	// Depth is nil when unset; an explicit value must be at least 1.
	Depth     *int           `config:"depth" validate:"omitempty,min=1"`
}

type LogSettings struct {
	Level  string `config:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `config:"format" validate:"omitempty,oneof=text json"`
}

type MetricsSettings struct {
	// File is a node_exporter textfile path. Empty disables the dump.
	File string `config:"file"`
}

// DefaultSettings holds the values used for anything left unset. Paths have
// no default here; the command line computes them.
func DefaultSettings() Settings {
	return Settings{
		Serialize: SerializeSettings{
			Lists:     prefs.ListsEncode,
			Namespace: prefs.DefaultGateNamespace,
			Depth:     intPtr(prefs.DefaultGateDepth),
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

func intPtr(n int) *int { return &n }

// ApplyDefaults fills the zero fields of s from DefaultSettings. Call it
// after validation so explicit values are checked before defaults hide them.
func (s *Settings) ApplyDefaults() error {
	return mergo.Merge(s, DefaultSettings())
}

// Serializer builds the serializer described by s.
func (s Settings) Serializer() prefs.Serializer {
	ser := prefs.Serializer{Lists: s.Serialize.Lists}
	if s.Serialize.Gate {
		ser.Gate = &prefs.Gate{Namespace: s.Serialize.Namespace}
		if s.Serialize.Depth != nil {
			ser.Gate.Depth = *s.Serialize.Depth
		}
	}
	return ser
}
