package session

import (
	"context"
	"time"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/worker"
)

// Authority is the remote system of record
type Authority interface {
	Load(ctx context.Context, farmID string) (*domain.Snapshot, error)
	// Sync submits pending actions. It must be idempotent per action id.
	Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error)
	Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error)
}

// Store persists a session so it can resume after an unexpected exit
type Store interface {
	// Load returns domain.ErrNoPersistedSession when nothing is stored and
	// domain.ErrCorruptSession when the stored blob cannot be decoded
	Load(ctx context.Context, farmID string) (*domain.PersistedSession, error)
	Save(ctx context.Context, s domain.PersistedSession) error
	Delete(ctx context.Context, farmID string) error
}

// Runner executes asynchronous session work such as sync calls.
// worker.Pool satisfies it.
type Runner interface {
	Enqueue(job worker.Job)
}

// Clock returns the current time
type Clock func() time.Time

// goRunner runs each job on its own goroutine
type goRunner struct{}

func (goRunner) Enqueue(job worker.Job) {
	go func() {
		_ = job.Process(context.Background())
	}()
}
