package ledger

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// sessionTracker remembers the session that last submitted for each farm.
// An entry lives for one window after the session's latest submission, so a
// farm is free for a new session once its previous one goes quiet.
type sessionTracker struct {
	mu     sync.Mutex
	active *expirable.LRU[string, string]
}

func newSessionTracker(window time.Duration) *sessionTracker {
	return &sessionTracker{
		active: expirable.NewLRU[string, string](sessionTrackerSize, nil, window),
	}
}

// Claim makes sessionID the farm's active session and refreshes its window.
// It reports false, leaving the active session in place, when another session
// submitted within the window. An empty session id is never tracked.
func (t *sessionTracker) Claim(farmID, sessionID string) bool {
	if sessionID == "" {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if current, ok := t.active.Get(farmID); ok && current != sessionID {
		return false
	}
	t.active.Add(farmID, sessionID)
	return true
}
