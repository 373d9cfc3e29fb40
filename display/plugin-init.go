package rainflow

import (
	"fmt"
	"log/slog"

	Rc "github.com/mkarrer/rainflow/counting"
	Rp "github.com/mkarrer/rainflow/plugin"
)

// InitBadgerStore attaches a badger-backed turning-point store to the
// session when RAINFLOW_PLUGIN_BADGER_PATH is set. Returns the store
// so the caller can Close it on shutdown.
func InitBadgerStore(s *Rc.Session) (*Rp.BadgerStore, error) {
	path := Rc.FillEnvVar("RAINFLOW_PLUGIN_BADGER_PATH")
	if path == "ENOENT" {
		return nil, nil
	}
	batch := Rc.FillEnvVarInt("RAINFLOW_PLUGIN_BADGER_BATCH", 100)

	slog.Info("Configuration found:",
		slog.String("Path", path),
		slog.Int("BatchSize", batch),
	)

	store, err := Rp.NewBadgerStore(path, batch)
	if err != nil {
		slog.Error("Failed to create badger store",
			slog.String("path", path),
			slog.Any("error", err))
		return nil, err
	}
	s.Store = store
	slog.Info("Badger turning-point store enabled", slog.String("path", path))
	return store, nil
}

// InitTransformer looks up an amplitude transformer in the plugin
// registry by name and attaches it to the session.
func InitTransformer(s *Rc.Session, name string) error {
	if name == "" {
		return nil
	}
	t, err := Rp.TransformerLookup(name)
	if err != nil {
		slog.Error("Unknown amplitude transformer", slog.String("name", name))
		return fmt.Errorf("amplitude transformer %q: %w", name, err)
	}
	s.Transform = t
	slog.Info("Amplitude transformer enabled", slog.String("type", s.Transform.Type()))
	return nil
}

// InitHistory attaches the in-memory damage historian.
func InitHistory(s *Rc.Session) *Rp.HistoryBuffer {
	h := Rp.NewHistoryBuffer()
	s.History = h
	return h
}
