package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/config"
	"github.com/c360studio/semgraph/rdf"
)

// watchAndRun re-runs fn whenever one of paths changes until ctx is done.
func watchAndRun(ctx context.Context, logger *slog.Logger, cfg *config.Config, paths []string, fn func() error) error {
	var format rdf.Format
	if cfg.Input.Format != "" {
		f, err := rdf.ParseFormat(cfg.Input.Format)
		if err != nil {
			return err
		}
		format = f
	}

	w, err := rdf.NewWatcher(rdf.WatcherConfig{
		Paths:         paths,
		Format:        format,
		DebounceDelay: cfg.Watch.Debounce,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, path := range paths {
		if err := w.Seed(path); err != nil {
			logger.Warn("Failed to hash input", "path", path, "error", err)
		}
	}

	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Error != nil {
				logger.Warn("Skipping unreadable input", "path", ev.Path, "error", ev.Error)
				continue
			}
			logger.Info("Input changed, converting", "path", ev.Path, "op", ev.Operation)
			if err := fn(); err != nil {
				logger.Error("Conversion failed", "error", err)
			}
		}
	}
}
