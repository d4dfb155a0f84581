package ledger

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// snapshotCache serves repeated loads of the same farm. Writers replace the
// entry after commit so a cached snapshot is never older than the last write
// made through this service.
type snapshotCache struct {
	lru *expirable.LRU[string, domain.Snapshot]
}

func newSnapshotCache(size int, ttl time.Duration) *snapshotCache {
	return &snapshotCache{lru: expirable.NewLRU[string, domain.Snapshot](size, nil, ttl)}
}

func (c *snapshotCache) Get(farmID string) (*domain.Snapshot, bool) {
	snap, ok := c.lru.Get(farmID)
	if !ok {
		return nil, false
	}
	return cloneSnapshot(snap), true
}

func (c *snapshotCache) Set(snap domain.Snapshot) {
	c.lru.Add(snap.FarmID, *cloneSnapshot(snap))
}

func (c *snapshotCache) Invalidate(farmID string) {
	c.lru.Remove(farmID)
}

func cloneSnapshot(s domain.Snapshot) *domain.Snapshot {
	return &domain.Snapshot{FarmID: s.FarmID, State: s.State.Clone(), Version: s.Version}
}
