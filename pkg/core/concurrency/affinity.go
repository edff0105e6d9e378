package concurrency

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// affinityRouter gives every Identity a sticky pool index.
//
// Known identities are served by a lock-free map read. A first-time identity
// takes the assignment lock, re-checks the table and only then draws the next
// round-robin slot, so the first insert wins, concurrent racers adopt it and
// the counter advances exactly once per distinct identity.
type affinityRouter struct {
	table   *xsync.Map[Identity, int]
	mu      sync.Mutex // serializes first-time assignments
	counter atomic.Uint64
	pools   int
}

func newAffinityRouter(pools int) *affinityRouter {
	return &affinityRouter{
		table: xsync.NewMap[Identity, int](),
		pools: pools,
	}
}

// Resolve returns the pool index of id, assigning one on first use
func (r *affinityRouter) Resolve(id Identity) int {
	if idx, ok := r.table.Load(id); ok {
		return idx
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.table.Load(id); ok {
		return idx
	}
	idx := int((r.counter.Add(1) - 1) % uint64(r.pools))
	r.table.Store(id, idx)
	return idx
}

// Lookup returns the pool index of id without assigning one
func (r *affinityRouter) Lookup(id Identity) (int, bool) {
	return r.table.Load(id)
}

// Assigned returns the number of identities in the table
func (r *affinityRouter) Assigned() int {
	return r.table.Size()
}

// Reset forgets every assignment. The counter keeps counting.
func (r *affinityRouter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table.Clear()
}
