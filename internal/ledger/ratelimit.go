package ledger

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// window counts submissions since the farm's first one in the current window
type window struct {
	count int
}

// rateLimiter is a per-farm fixed-window counter. Windows expire with the
// LRU entry, so an idle farm starts a new window on its next submission.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	windows *expirable.LRU[string, *window]
}

func newRateLimiter(limit int, every time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		windows: expirable.NewLRU[string, *window](rateLimiterSize, nil, every),
	}
}

// Allow records one submission and reports whether it is within the limit.
// A non-positive limit disables limiting.
func (r *rateLimiter) Allow(farmID string) bool {
	if r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows.Get(farmID)
	if !ok {
		r.windows.Add(farmID, &window{count: 1})
		return true
	}
	if w.count >= r.limit {
		return false
	}
	w.count++
	return true
}
