package main

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"warden/internal/auth"
	"warden/internal/backup"
	"warden/internal/config"
	"warden/internal/database"
	"warden/internal/directory"
	"warden/internal/docstore"
	"warden/internal/httphandlers"
	"warden/internal/manager"
	"warden/internal/scheduler"
	"warden/internal/smoketest"
	"warden/internal/status"
	"warden/internal/storage"
	"warden/internal/types"
	"warden/logger"
)

const (
	backupJob    = "backup"
	smokeTestJob = "smoke-test"
)

type app struct {
	store        docstore.Store
	orchestrator backup.Orchestrator
	verifier     smoketest.Verifier
	manager      manager.Manager
	scheduler    scheduler.Scheduler
}

func setup(ctx context.Context, cfg config.Config) (*app, error, func() error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database"), nil
	}

	isolatedDB, err := database.Open(cfg.SmokeTestDatabasePath)
	if err != nil {
		closeDB(db)
		return nil, errors.Wrap(err, "failed to open smoke test database"), nil
	}

	teardown := func() error {
		closeDB(isolatedDB)
		closeDB(db)
		return nil
	}

	st, err := storage.New(cfg.Storage)
	if err != nil {
		_ = teardown()
		return nil, err, nil
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = teardown()
		return nil, err, nil
	}

	tokens, err := newTokenManager(cfg)
	if err != nil {
		_ = teardown()
		return nil, err, nil
	}

	store := docstore.New(database.NewDocumentRepository(db))
	isolated := docstore.New(database.NewDocumentRepository(isolatedDB))
	dir := directory.New(database.NewUserRepository(db))
	reporter := status.NewReporter(store)
	if err := reporter.Ensure(ctx); err != nil {
		_ = teardown()
		return nil, err, nil
	}

	orchestrator := backup.NewOrchestrator(store, dir, st, reporter, logger.Named("backup"), backup.Options{
		Location: loc,
		Timeout:  cfg.PipelineTimeout,
		PageSize: cfg.DirectoryPageSize,
	})
	verifier := smoketest.NewVerifier(reporter, isolated, st, logger.Named("smoketest"), smoketest.Options{
		Timeout:     cfg.PipelineTimeout,
		CleanupSize: cfg.CleanupBatchSize,
	})

	sched, err := scheduler.New(loc)
	if err != nil {
		_ = teardown()
		return nil, err, nil
	}

	return &app{
			store:        store,
			orchestrator: orchestrator,
			verifier:     verifier,
			manager: manager.New(tokens, store, orchestrator, verifier, reporter,
				logger.Named("manager"), cfg.HeartbeatStaleAfter),
			scheduler: sched,
		}, nil, func() error {
			err := sched.Shutdown()
			logger.Info("scheduler stopped", zap.Error(err))
			_ = teardown()
			logger.Info("DB Closed")
			return err
		}
}

func (a *app) schedule(ctx context.Context, cfg config.Config) error {
	err := a.scheduler.Schedule(ctx, scheduler.Job{
		Name:       backupJob,
		Expression: cfg.BackupSchedule,
		Run: func(ctx context.Context) error {
			_, err := a.orchestrator.Run(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}

	err = a.scheduler.Schedule(ctx, scheduler.Job{
		Name:       smokeTestJob,
		Expression: cfg.SmokeTestSchedule,
		Run: func(ctx context.Context) error {
			_, err := a.verifier.Run(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}

	a.scheduler.Start()
	return nil
}

func (a *app) routes() chi.Router {
	return httphandlers.Routes(httphandlers.NewApiHandler(a.manager, logger.Named("http")))
}

func (a *app) grantAdmin(ctx context.Context, uid string) error {
	return a.store.Merge(ctx, types.UsersCollection, uid, map[string]interface{}{"isAdmin": true})
}

func newTokenManager(cfg config.Config) (*auth.TokenManager, error) {
	return auth.NewTokenManager(cfg.AuthTokenSecret, cfg.AuthTokenTTL)
}

func closeDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
