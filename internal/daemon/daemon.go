package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"reloop/internal/api"
	"reloop/internal/catalog"
	"reloop/internal/config"
	"reloop/internal/ingest"
	"reloop/internal/similarity"
)

// Daemon coordinates the shared components and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *catalog.Store
	engine   *similarity.Engine
	ingestor *ingest.Ingestor
	service  *api.Service

	lockPath string
	lock     *flock.Flock
	server   *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, engine *similarity.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || engine == nil {
		return nil, errors.New("daemon requires config, catalog store, and engine")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ingestor := ingest.New(cfg, store, engine, logger)
	service := api.NewService(cfg, store, engine, ingestor, logger)
	lockPath := cfg.LockPath()

	return &Daemon{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "daemon")),
		store:    store,
		engine:   engine,
		ingestor: ingestor,
		service:  service,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, warms the engine's feature cache from the
// catalog, and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reloop daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.ingestor.WarmEngine(runCtx); err != nil {
		d.logger.Warn("engine warm-up failed", slog.String("error", err.Error()))
	}

	server, err := newAPIServer(d.cfg, d.service, d.logger)
	if err != nil {
		d.releaseLock()
		cancel()
		d.cancel = nil
		return err
	}
	d.server = server
	if err := d.server.start(runCtx); err != nil {
		d.releaseLock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("reloop daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.server != nil {
		d.server.stop()
		d.server = nil
	}
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("reloop daemon stopped")
}

// Close stops the daemon and releases the catalog store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Service exposes the API service for in-process consumers.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Addr reports the bound API address, or empty before Start.
func (d *Daemon) Addr() string {
	if d.server == nil {
		return ""
	}
	return d.server.addr()
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.String("error", err.Error()))
	}
}
