package cmd

import (
	"context"
	"fmt"
	"time"

	"commerce-sync/core/config"
	"commerce-sync/core/lock"
	"commerce-sync/core/logger"
	"commerce-sync/core/metrics"
	"commerce-sync/core/reconcile"
	"commerce-sync/core/shopify"
	"commerce-sync/core/storage"
	"commerce-sync/core/store"
	"commerce-sync/feature/syncjob"

	"go.uber.org/zap"
)

// app bundles the components shared by the server and the CLI commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	metrics *metrics.Metrics
	sync    *syncjob.Service
	closers []func() error
}

// bootstrap loads the configuration and wires the sync engine.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !cfg.Database.IsValidDriver() {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if !cfg.Server.IsValidEnvironment() {
		logg.Warn("Unknown server environment", zap.String("environment", cfg.Server.Environment))
	}

	a := &app{cfg: cfg, logger: logg, metrics: metrics.New()}

	a.store, err = store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	if err := a.store.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	locker, closeLock, err := lock.New(ctx, cfg.Lock, logg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeLock)

	client, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		a.Close()
		return nil, err
	}

	orchestrator := reconcile.NewOrchestrator(client, a.store, cfg.Sync.Options(a.metrics), logg)

	opts := []syncjob.Option{
		syncjob.WithMetrics(a.metrics),
		syncjob.WithTimeout(time.Duration(cfg.Sync.TimeoutMinutes) * time.Minute),
	}
	if cfg.Storage.Enabled {
		objects, err := storage.NewClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, objects, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, syncjob.WithArchive(syncjob.NewArchive(objects, cfg.Storage.Bucket)))
		logg.Info("Sync report archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	a.sync = syncjob.NewService(a.store, orchestrator, locker, logg, opts...)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
