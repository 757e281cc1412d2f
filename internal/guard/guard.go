// Package guard provides the per-owner creation guard: a process-local set of
// owners currently inside a room-creation attempt. It is the sole defense
// against duplicate rooms from rapid repeated trigger joins, so acquisition
// must happen synchronously before any asynchronous work begins.
package guard

import "sync"

// CreationGuard is a concurrency-safe set of owner IDs. Membership is held
// for the span of a single creation attempt; callers must defer Release on
// every exit path. The set is not persisted and starts empty on restart.
type CreationGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an empty guard.
func New() *CreationGuard {
	return &CreationGuard{active: make(map[string]struct{})}
}

// TryAcquire atomically checks and inserts the owner. It returns false when
// the owner is already mid-creation, in which case the caller must no-op.
func (g *CreationGuard) TryAcquire(ownerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.active[ownerID]; held {
		return false
	}
	g.active[ownerID] = struct{}{}
	return true
}

// Release removes the owner. Releasing an owner that is not held is a no-op.
func (g *CreationGuard) Release(ownerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, ownerID)
}

// Held reports whether the owner is currently mid-creation.
func (g *CreationGuard) Held(ownerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.active[ownerID]
	return held
}
