package scheduler

import (
	"sync"
	"time"

	"github.com/osse101/FarmState_Go/internal/worker"
)

// Enqueuer accepts jobs for execution; worker.Pool satisfies it
type Enqueuer interface {
	Enqueue(job worker.Job)
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	runner   Enqueuer
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new scheduler
func New(runner Enqueuer) *Scheduler {
	return &Scheduler{
		runner: runner,
		quit:   make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval, starting one interval from now.
// A full queue delays the next tick rather than piling up runs.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runner.Enqueue(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}
