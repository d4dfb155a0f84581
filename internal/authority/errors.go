package authority

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory decides whether a failed call is retried
type ErrorCategory int

const (
	// Recoverable errors are retried with exponential backoff: 5xx, 408, 429
	// without a rejection body, and network failures
	Recoverable ErrorCategory = iota
	// Irrecoverable errors fail at once: other 4xx and every rejection
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps a failed authority call with its retry category
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int
	Body       string
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable reports whether err must not be retried
func IsIrrecoverable(err error) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category == Irrecoverable
	}
	return false
}

func httpCategory(status int) ErrorCategory {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return Recoverable
	case status >= 400 && status < 500:
		return Irrecoverable
	default:
		return Recoverable
	}
}

func newHTTPError(status int, body, operation string, underlying error) *ClassifiedError {
	if underlying == nil {
		underlying = fmt.Errorf("%s failed: HTTP %d", operation, status)
	}
	return &ClassifiedError{
		Category:   httpCategory(status),
		StatusCode: status,
		Body:       body,
		Underlying: underlying,
	}
}

func newNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
