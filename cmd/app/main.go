package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/FarmState_Go/internal/bootstrap"
	"github.com/osse101/FarmState_Go/internal/config"
	"github.com/osse101/FarmState_Go/internal/database"
	"github.com/osse101/FarmState_Go/internal/eventlog"
	"github.com/osse101/FarmState_Go/internal/ledger"
	"github.com/osse101/FarmState_Go/internal/reducer"
	"github.com/osse101/FarmState_Go/internal/scheduler"
	"github.com/osse101/FarmState_Go/internal/server"
	"github.com/osse101/FarmState_Go/internal/worker"
)

const (
	shutdownTimeout      = 10 * time.Second
	eventCleanupInterval = 24 * time.Hour
	backgroundWorkers    = 2
	backgroundQueueSize  = 16
)

// @title FarmState Authority API
// @version 1.0
// @description Authoritative ledger for farm sessions: idempotent action sync and blocking operations.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(bootstrap.LoggerOptions{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Dir:         cfg.LogDir,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logFile.Close()

	if warnings, err := config.ValidateEnvWithWarnings(); err != nil {
		slog.Warn("Environment validation failed", "error", err)
	} else {
		for _, w := range warnings {
			slog.Warn(w)
		}
	}

	ctx := context.Background()

	// The authority rolls harvest counts; sessions adopt them on reconcile
	d, err := bootstrap.BuildDispatcher(cfg.CatalogPath, cfg.Network, reducer.WithHarvestRoller(reducer.RandomHarvests))
	if err != nil {
		slog.Error("Failed to build dispatcher", "error", err)
		os.Exit(1)
	}

	var (
		repos         *bootstrap.Repositories
		dbPool        database.Pool
		schemaVersion int64
	)
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("Running with in-memory storage, farms are lost on exit")
		repos = bootstrap.InitializeMemoryRepositories()
	default:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		version, err := database.Migrate(ctx, pool)
		if err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("Database ready", "schema_version", version)
		schemaVersion = version

		repos = bootstrap.InitializeRepositories(pool)
		dbPool = pool
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg.EventDeadLetterPath)
	if err != nil {
		slog.Error("Failed to initialize event system", "error", err)
		os.Exit(1)
	}

	eventLog := eventlog.NewService(repos.EventLog)
	if err := bootstrap.RegisterEventHandlers(bus, eventLog); err != nil {
		slog.Error("Failed to register event handlers", "error", err)
		os.Exit(1)
	}

	ledgerService := ledger.NewService(repos.Farm, d, publisher, ledger.Config{
		RateLimit:       cfg.SyncRateLimit,
		MaxBatchActions: cfg.MaxBatchActions,
		SessionWindow:   cfg.SessionWindow,
		HoardingLimit:   decimal.NewFromInt(int64(cfg.HoardingLimit)),
	})

	workers := worker.NewPool(backgroundWorkers, backgroundQueueSize)
	workers.Start()
	sched := scheduler.New(workers)
	sched.Schedule(eventCleanupInterval, eventlog.NewCleanupJob(eventLog, cfg.EventRetentionDays))

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		Version:        cfg.Version,
		SchemaVersion:  schemaVersion,
	}, server.Deps{
		Pool:     dbPool,
		Ledger:   ledgerService,
		EventLog: eventLog,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		Scheduler:          sched,
		WorkerPool:         workers,
		ResilientPublisher: publisher,
	})
}
