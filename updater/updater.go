// Package updater applies a defaults document to a browser preferences file.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skekre98/prefsync/logging"
	"github.com/skekre98/prefsync/metrics"
	"github.com/skekre98/prefsync/prefs"
	"github.com/skekre98/prefsync/store"
)

// TargetStore is the preferences document being updated.
type TargetStore interface {
	Read(ctx context.Context) (prefs.Document, error)
	Write(ctx context.Context, doc prefs.Document) error
	Name() string
}

// SourceStore supplies the defaults applied on top of the target.
type SourceStore interface {
	Load(ctx context.Context) (prefs.Document, error)
	Name() string
}

// Updater runs read, serialize, merge and write as one batch. A failure at
// any step returns before the target is written.
type Updater struct {
	Serializer prefs.Serializer
	Logger     *slog.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
}

func New(s prefs.Serializer, logger *slog.Logger, m *metrics.Metrics) *Updater {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Updater{Serializer: s, Logger: logger, Metrics: m}
}

// Update merges the serialized defaults from source into target.
func (u *Updater) Update(ctx context.Context, target TargetStore, source SourceStore) (err error) {
	start := time.Now()
	l := u.logger().With("target", target.Name(), "source", source.Name())
	defer func() {
		u.Metrics.ObserveRun(start, err)
		if err != nil {
			l.Error("preferences update failed", "error", err)
		}
	}()

	current, err := target.Read(ctx)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}
	l.Debug("read preferences", "keys", len(current))

	defaults, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}

	serialized, err := u.Serializer.Serialize(defaults)
	if err != nil {
		return fmt.Errorf("serialize source: %w", err)
	}
	leaves := prefs.Leaves(serialized)
	l.Debug("serialized defaults", "keys", len(serialized), "leaves", leaves)

	if err := ctx.Err(); err != nil {
		return err
	}

	merged := prefs.Merge(current, serialized)

	if err := target.Write(ctx, merged); err != nil {
		return fmt.Errorf("write target: %w", err)
	}

	u.Metrics.AddLeaves(leaves)
	u.Metrics.AddKeys(len(serialized))
	l.Info("preferences updated",
		"keys_merged", len(serialized),
		"leaves", leaves,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Export copies the document in from to to, typically to get an indented
// copy of a compact preferences file.
func (u *Updater) Export(ctx context.Context, from, to TargetStore) error {
	doc, err := from.Read(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", from.Name(), err)
	}
	if err := to.Write(ctx, doc); err != nil {
		return fmt.Errorf("write %s: %w", to.Name(), err)
	}
	u.logger().Info("preferences exported", "from", from.Name(), "to", to.Name(), "keys", len(doc))
	return nil
}

// UpdatePreferences is the file-path form of Update: targetPath is a
// preferences file or a user-data directory, sourcePath a YAML or TOML
// defaults file.
func (u *Updater) UpdatePreferences(ctx context.Context, targetPath, sourcePath string, pretty bool) error {
	target := &store.JSONFile{Path: store.ResolveTarget(targetPath), Pretty: pretty}
	return u.Update(ctx, target, store.OpenSource(sourcePath))
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger == nil {
		return logging.Discard()
	}
	return u.Logger
}
