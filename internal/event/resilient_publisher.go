package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/osse101/FarmState_Go/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

// ResilientPublisher wraps an Event Bus to add retry logic and dead letter queuing
type ResilientPublisher struct {
	inner      Bus
	config     ResilientConfig
	deadLetter *DeadLetterWriter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) (*ResilientPublisher, error) {
	if config.MaxRetries <= 0 {
		config.MaxRetries = RetryMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = RetryInitialDelaySeconds * time.Second
	}

	dlw, err := NewDeadLetterWriter(config.DeadLetterPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ResilientPublisher{
		inner:      inner,
		config:     config,
		deadLetter: dlw,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Publish attempts to publish an event. A failed first attempt is retried in
// the background with exponential backoff, and the caller gets nil.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed,
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	p.wg.Add(1)
	go p.retryLoop(event)

	return nil
}

func (p *ResilientPublisher) retryLoop(event Event) {
	defer p.wg.Done()
	log := logger.FromContext(p.ctx)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.config.RetryDelay
	policy.MaxElapsedTime = 0

	attempts := 0
	var lastErr error
	op := func() error {
		attempts++
		lastErr = p.inner.Publish(p.ctx, event)
		if lastErr != nil {
			log.Warn(LogMsgEventRetryFailed, "event_type", event.Type, "attempt", attempts, "error", lastErr)
		}
		return lastErr
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(p.config.MaxRetries-1)), p.ctx))
	if err == nil {
		log.Info(LogMsgEventRetrySucceeded, "event_type", event.Type, "attempt", attempts)
		return
	}

	if lastErr == nil {
		lastErr = err
	}
	if errors.Is(err, context.Canceled) {
		log.Warn(LogMsgEventDroppedShutdown, "event_type", event.Type)
	} else {
		log.Warn(LogMsgEventRetryExhausted, "event_type", event.Type, "attempts", attempts)
	}
	if werr := p.deadLetter.Write(event, attempts, lastErr); werr != nil {
		log.Error(LogMsgDeadLetterWriteFailed, "error", werr)
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Shutdown stops pending retries, dead-lettering what is still queued
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
	return p.deadLetter.Close()
}
