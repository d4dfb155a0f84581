// Package authority is the HTTP client of the remote farm authority
package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// Config configures a Client
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Client talks to the authority API. Sync is safe to retry because the
// authority skips action ids it has already applied.
type Client struct {
	http *resty.Client
	cfg  Config
}

// New creates a client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = DefaultBaseBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader(HeaderAPIKey, cfg.APIKey).
		SetTimeout(cfg.Timeout)

	return &Client{http: c, cfg: cfg}
}

// Load fetches the authoritative snapshot of a farm
func (c *Client) Load(ctx context.Context, farmID string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.do(ctx, opLoad, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("farmID", farmID).
			SetResult(&snap).
			Get(PathFarm)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// CreateFarm registers a farm with its starting state
func (c *Client) CreateFarm(ctx context.Context, req domain.CreateFarmRequest) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.do(ctx, opCreate, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&snap).
			Post(PathFarms)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Sync submits pending actions
func (c *Client) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error) {
	var resp domain.SyncResponse
	err := c.do(ctx, opSync, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("farmID", req.FarmID).
			SetBody(req).
			SetResult(&resp).
			Post(PathSync)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Execute flushes pending actions and runs one operation
func (c *Client) Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error) {
	var resp domain.OperationResponse
	err := c.do(ctx, opOperation, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("farmID", req.FarmID).
			SetBody(req).
			SetResult(&resp).
			Post(PathOperations)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// do runs call with exponential backoff until it succeeds, fails
// irrecoverably or runs out of attempts
func (c *Client) do(ctx context.Context, operation string, call func() (*resty.Response, error)) error {
	log := logger.FromContext(ctx)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = c.cfg.MaxBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.cfg.MaxAttempts-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := classify(operation, call)
		if err == nil {
			return nil
		}
		if IsIrrecoverable(err) {
			return backoff.Permanent(err)
		}
		if attempt < c.cfg.MaxAttempts {
			log.Debug(LogMsgRetry, "operation", operation, "attempt", attempt, "error", err)
		}
		return err
	}, policy)

	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		log.Warn(LogMsgFailed, "operation", operation, "attempts", attempt, "error", err)
	}
	return err
}

// classify turns a transport result into nil or a ClassifiedError.
// A rejection body is always irrecoverable and unwraps to *domain.Rejection.
func classify(operation string, call func() (*resty.Response, error)) error {
	resp, err := call()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &ClassifiedError{Category: Irrecoverable, Underlying: err}
		}
		return newNetworkError(operation, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	body := resp.String()
	var apiErr domain.APIError
	if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil {
		if apiErr.Rejection != nil {
			return &ClassifiedError{
				Category:   Irrecoverable,
				StatusCode: resp.StatusCode(),
				Body:       body,
				Underlying: apiErr.Rejection,
			}
		}
		if resp.StatusCode() == http.StatusNotFound {
			return newHTTPError(resp.StatusCode(), body, operation, fmt.Errorf("%w: %s", domain.ErrFarmNotFound, apiErr.Error))
		}
		if resp.StatusCode() == http.StatusConflict {
			return newHTTPError(resp.StatusCode(), body, operation, fmt.Errorf("%w: %s", domain.ErrFarmExists, apiErr.Error))
		}
	}
	return newHTTPError(resp.StatusCode(), body, operation, nil)
}
