package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FarmState_Go/internal/database/postgres"
	"github.com/osse101/FarmState_Go/internal/eventlog"
	"github.com/osse101/FarmState_Go/internal/ledger"
	"github.com/osse101/FarmState_Go/internal/repository"
)

// Repositories holds the storage behind the authority
type Repositories struct {
	Farm     repository.Farm
	EventLog eventlog.Repository
}

// InitializeRepositories creates the PostgreSQL repositories
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Farm:     postgres.NewFarmRepository(dbPool),
		EventLog: postgres.NewEventLogRepository(dbPool),
	}
}

// InitializeMemoryRepositories creates in-process repositories. State is
// lost on exit.
func InitializeMemoryRepositories() *Repositories {
	return &Repositories{
		Farm:     ledger.NewFakeRepository(),
		EventLog: eventlog.NewMemoryRepository(),
	}
}
