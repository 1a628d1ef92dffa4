package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/config"
	farmrepo "github.com/mamadbah2/lirio/internal/repository/farm"
	"github.com/mamadbah2/lirio/internal/repository/mongodb"
	"github.com/mamadbah2/lirio/internal/repository/sheets"
	"github.com/mamadbah2/lirio/internal/service/backup"
	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	reportingsvc "github.com/mamadbah2/lirio/internal/service/reporting"
	"github.com/mamadbah2/lirio/internal/storage"
	"github.com/mamadbah2/lirio/pkg/logger"
)

// app holds the services shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *storage.Store
	repos     *farmrepo.Repositories
	farm      *farmsvc.Service
	reporting *reportingsvc.Service
	archive   *mongodb.Repository
	closers   []func(context.Context) error
}

// newApp loads configuration, opens storage and wires the core services.
// Optional integrations are connected only when configured.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	baseLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(baseLogger)

	a := &app{cfg: cfg, logger: baseLogger}

	metrics, err := storage.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register storage metrics: %w", err)
	}
	backend, err := storage.Open(ctx, *cfg, logger.Named(baseLogger, "storage"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.store = storage.NewStore(storage.Instrument(backend, metrics))
	a.closers = append(a.closers, func(context.Context) error { return a.store.Close() })

	a.repos = farmrepo.New(a.store, logger.Named(baseLogger, "repo.farm"))

	var sink farmsvc.AuditSink
	if cfg.Sheets.Enabled() {
		sheet, err := sheets.NewGoogleSheet(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init sheets mirror: %w", err)
		}
		sink = sheets.NewAuditMirror(sheet)
		baseLogger.Info("google sheets audit mirror enabled")
	}

	var archive mongodb.ReportArchive
	if cfg.MongoDB.Enabled() {
		a.archive, err = mongodb.NewRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init report archive: %w", err)
		}
		archive = a.archive
		a.closers = append(a.closers, a.archive.Close)
	}

	a.farm = farmsvc.NewService(a.repos, sink, logger.Named(baseLogger, "svc.farm"))
	a.reporting = reportingsvc.NewService(a.repos, archive, logger.Named(baseLogger, "svc.reporting"))
	return a, nil
}

// initialize seeds an empty store and reconciles the feed bucket.
func (a *app) initialize(ctx context.Context) (farmrepo.InitResult, error) {
	ds, err := farmrepo.LoadDataset(a.cfg.Storage.SeedFile)
	if err != nil {
		return farmrepo.InitResult{}, err
	}
	return a.repos.Initialize(ctx, ds)
}

func (a *app) backup(ctx context.Context) (*backup.Service, error) {
	if !a.cfg.Backup.Enabled() {
		return nil, errors.New("BACKUP_S3_BUCKET is not configured")
	}
	client, err := backup.NewS3Client(ctx, a.cfg.Backup)
	if err != nil {
		return nil, err
	}
	return backup.NewService(a.store, client, a.cfg.Backup.Bucket, logger.Named(a.logger, "svc.backup")), nil
}

func (a *app) close() {
	ctx := context.Background()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Error("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}
