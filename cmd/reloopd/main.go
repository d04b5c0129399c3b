// Command reloopd runs the reloop daemon: it owns the clip library, the
// similarity engine, and the HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"reloop/internal/catalog"
	"reloop/internal/config"
	"reloop/internal/daemon"
	"reloop/internal/frames"
	"reloop/internal/logging"
	"reloop/internal/preflight"
	"reloop/internal/similarity"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare library directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, result := range preflight.CheckAll(cfg) {
		if !result.Passed {
			logger.Warn("preflight check failed",
				slog.String("check", result.Name),
				slog.String("detail", result.Detail))
		}
	}

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		logger.Error("open catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	engine, err := similarity.New(frames.NewLoader(), similarity.NewStore(cfg.MatrixPath()), cfg.Similarity.FrameSize, logger)
	if err != nil {
		_ = store.Close()
		logger.Error("build similarity engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, engine, logger)
	if err != nil {
		_ = store.Close()
		logger.Error("create daemon", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", slog.String("error", err.Error()))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("reloopd shutting down")
}
