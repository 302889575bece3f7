package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/skekre98/prefsync/config"
	"github.com/skekre98/prefsync/config/source"
	"github.com/skekre98/prefsync/logging"
	"github.com/skekre98/prefsync/metrics"
	"github.com/skekre98/prefsync/store"
	"github.com/skekre98/prefsync/updater"
)

// flag name -> settings key, for flags whose name differs from the key.
var flagKeys = map[string]string{
	"config":         "source",
	"user-data-dir":  "target",
	"lists":          "serialize.lists",
	"gate":           "serialize.gate",
	"gate-namespace": "serialize.namespace",
	"gate-depth":     "serialize.depth",
	"metrics-file":   "metrics.file",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	defaults := defaultPaths()

	fs := pflag.NewFlagSet("prefsync", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("config", "c", stringOr(defaults["source"]), "defaults document (YAML or TOML)")
	fs.StringP("user-data-dir", "u", stringOr(defaults["target"]), "preferences file or browser --user-data-dir")
	settingsPath := fs.String("settings", "", "prefsync settings file or directory holding prefsync.yaml")
	fs.Bool("pretty", false, "indent the preferences file")
	fs.String("export", "", "also write an indented copy of the result here")
	fs.String("lists", "encode", "list values: encode (one JSON string) or recurse")
	fs.Bool("gate", false, "collapse values deep below the gated namespace into JSON strings")
	fs.String("gate-namespace", "devtools", "namespace the depth gate applies to")
	fs.Int("gate-depth", 2, "levels kept below the gated namespace")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "text", "text or json")
	fs.String("metrics-file", "", "write Prometheus metrics to this textfile")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	settings, err := config.NewLoader(
		&source.MapSource{Label: "defaults", Data: defaults},
		&source.FileSource{Path: *settingsPath, Optional: *settingsPath == ""},
		&source.EnvSource{},
		&source.CLISource{Flags: fs, Keys: flagKeys},
	).Settings(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "prefsync: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		Writer: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "prefsync: %v\n", err)
		return 1
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	m := metrics.New()
	err = apply(ctx, settings, updater.New(settings.Serializer(), logger, m))
	if settings.Metrics.File != "" {
		if merr := m.WriteTextfile(settings.Metrics.File); merr != nil {
			logger.Warn("metrics textfile not written", "path", settings.Metrics.File, "error", merr)
		}
	}
	if err != nil {
		return 1
	}
	return 0
}

func apply(ctx context.Context, s config.Settings, u *updater.Updater) error {
	target := &store.JSONFile{Path: store.ResolveTarget(s.Target), Pretty: s.Pretty}
	if err := u.Update(ctx, target, store.OpenSource(s.Source)); err != nil {
		return err
	}
	if s.Export == "" {
		return nil
	}
	if err := u.Export(ctx, target, &store.JSONFile{Path: s.Export, Pretty: true}); err != nil {
		u.Logger.Error("export failed", "error", err)
		return err
	}
	return nil
}

// defaultPaths resolves the environment-dependent defaults: the defaults
// document shipped next to the binary and Chrome's default profile.
func defaultPaths() map[string]any {
	out := map[string]any{}
	if exe, err := os.Executable(); err == nil {
		out["source"] = filepath.Join(filepath.Dir(exe), "default_preferences.yml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		out["target"] = filepath.Join(home, ".config", "google-chrome", "Default", "Preferences")
	}
	return out
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}
