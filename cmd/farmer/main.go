// Command farmer is a headless farm session client. It keeps the session
// state in a local SQLite file, autosaves to the authority on an interval and
// reads gameplay commands from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/osse101/FarmState_Go/internal/authority"
	"github.com/osse101/FarmState_Go/internal/bootstrap"
	"github.com/osse101/FarmState_Go/internal/config"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/metrics"
	"github.com/osse101/FarmState_Go/internal/scheduler"
	"github.com/osse101/FarmState_Go/internal/session"
	"github.com/osse101/FarmState_Go/internal/store"
	"github.com/osse101/FarmState_Go/internal/worker"
)

const (
	serviceName      = "farmer"
	sessionWorkers   = 2
	sessionQueueSize = 32
	prompt           = "> "
)

func main() {
	create := flag.Bool("create", false, "register the farm with the authority before loading it")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(bootstrap.LoggerOptions{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Dir:         cfg.LogDir,
		ServiceName: serviceName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *create); err != nil {
		slog.Error("Farmer stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, create bool) error {
	d, err := bootstrap.BuildDispatcher(cfg.CatalogPath, cfg.Network)
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	sessions, err := store.OpenSQLite(ctx, cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	client := authority.New(authority.Config{
		BaseURL:     cfg.AuthorityURL,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.SyncTimeout,
		MaxAttempts: cfg.SyncMaxAttempts,
	})

	if create {
		_, err := client.CreateFarm(ctx, domain.CreateFarmRequest{FarmID: cfg.FarmID})
		switch {
		case errors.Is(err, domain.ErrFarmExists):
			slog.Info("Farm already registered", "farm_id", cfg.FarmID)
		case err != nil:
			return fmt.Errorf("failed to create farm: %w", err)
		default:
			slog.Info("Farm registered", "farm_id", cfg.FarmID)
		}
	}

	bus := event.NewMemoryBus()
	metrics.NewEventMetricsCollector().Register(bus)

	workers := worker.NewPool(sessionWorkers, sessionQueueSize)
	workers.Start()
	defer workers.Stop()

	m := session.New(session.Config{
		FarmID:      cfg.FarmID,
		SyncTimeout: cfg.SyncTimeout,
	}, session.Deps{
		Authority:  client,
		Store:      sessions,
		Dispatcher: d,
		Runner:     workers,
		Bus:        bus,
	})

	var mu sync.Mutex
	last := session.StateLoading
	unsubscribe := m.Subscribe(func(v session.View) {
		mu.Lock()
		defer mu.Unlock()
		if v.State == last {
			return
		}
		slog.Info("Session state changed", "from", last, "to", v.State, "version", v.Version, "pending", v.Pending, "error", v.ErrorCode)
		last = v.State
	})
	defer unsubscribe()

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	sched := scheduler.New(workers)
	sched.Schedule(cfg.AutosaveInterval, session.NewAutosaveJob(m))
	defer sched.Stop()

	readLoop(ctx, m)

	if err := m.Blur(); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		slog.Warn("Final save failed", "error", err)
	}
	waitSettled(m, cfg.SyncTimeout)
	return m.Close()
}

// waitSettled blocks until nothing is in flight or timeout passes. Pending
// actions that miss the window stay in the local store for the next run.
func waitSettled(m *session.Machine, timeout time.Duration) {
	settled := make(chan struct{})
	var once sync.Once
	unsubscribe := m.Subscribe(func(v session.View) {
		if !awaitingAuthority(v.State) {
			once.Do(func() { close(settled) })
		}
	})
	defer unsubscribe()

	if !awaitingAuthority(m.View().State) {
		return
	}
	select {
	case <-settled:
	case <-time.After(timeout):
		slog.Warn("Session did not settle before exit", "pending", m.View().Pending)
	}
}

func awaitingAuthority(s session.State) bool {
	switch s {
	case session.StateLoading, session.StateSyncing, session.StateAutosaving, session.StateRefreshing,
		session.StatePurchasing, session.StateMinting, session.StateTransacting,
		session.StateTrading, session.StateDepositing:
		return true
	default:
		return false
	}
}

// readLoop executes stdin lines until EOF, quit or ctx is done
func readLoop(ctx context.Context, m *session.Machine) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprint(os.Stdout, prompt)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			err := execute(m, line, os.Stdout)
			if errors.Is(err, errQuit) {
				return
			}
			if err != nil {
				fmt.Fprintln(os.Stdout, err)
			}
			fmt.Fprint(os.Stdout, prompt)
		}
	}
}
