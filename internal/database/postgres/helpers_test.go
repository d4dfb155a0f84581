package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/FarmState_Go/internal/database"
)

var (
	testPool      *pgxpool.Pool
	terminateTest func()
	setupOnce     sync.Once
	setupErr      error
)

// setupTestPool starts one container for the package and migrates it
func setupTestPool(ctx context.Context) error {
	setupOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				setupErr = fmt.Errorf("container setup panicked: %v", r)
			}
		}()

		container, err := tcpostgres.Run(ctx,
			"postgres:15-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			setupErr = err
			return
		}
		terminateTest = func() { _ = container.Terminate(context.Background()) }

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			setupErr = err
			return
		}
		if testPool, err = database.NewPool(ctx, connStr, 10, time.Minute, 5*time.Minute); err != nil {
			setupErr = err
			return
		}
		_, setupErr = database.Migrate(ctx, testPool)
	})
	return setupErr
}

// requirePool skips the test when Docker is unavailable
func requirePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if err := setupTestPool(context.Background()); err != nil {
		t.Skipf("Skipping integration test: database not available: %v", err)
	}
	return testPool
}
