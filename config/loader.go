package config

import (
	"context"
	"fmt"
)

// Loader reads settings from a list of sources and binds them to a struct.
//
// Sources are processed in order with later sources overriding earlier
// ones, so [defaults, file, env, cli] lets flags win over everything.
type Loader struct {
	sources []ConfigSource
	binder  *Binder
}

func NewLoader(sources ...ConfigSource) *Loader {
	return &Loader{
		sources: sources,
		binder:  NewBinder(),
	}
}

// Merged loads every source and returns the combined map.
func (l *Loader) Merged(ctx context.Context) (map[string]any, error) {
	merged := map[string]any{}
	for _, src := range l.sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", src.Name(), err)
		}
		mergeMaps(merged, vals)
	}
	return merged, nil
}

// Load binds the merged sources into target, a pointer to a struct.
func (l *Loader) Load(ctx context.Context, target any) error {
	merged, err := l.Merged(ctx)
	if err != nil {
		return err
	}
	if err := l.binder.Bind(merged, target); err != nil {
		return fmt.Errorf("failed to bind settings: %w", err)
	}
	return nil
}

// Settings loads and validates the run settings, then fills in defaults.
func (l *Loader) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	if err := l.Load(ctx, &s); err != nil {
		return s, err
	}
	if err := s.ApplyDefaults(); err != nil {
		return s, fmt.Errorf("apply default settings: %w", err)
	}
	return s, nil
}
