package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// GroupState is the lifecycle state of a GroupExecutor
type GroupState int32

const (
	StateUninitialized GroupState = iota
	StateAccepting
	StateClosed
)

func (s GroupState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAccepting:
		return "accepting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// groupRuntime is published once by Initialize and never mutated afterwards,
// so Submit reads it without locking.
type groupRuntime struct {
	pools  []WorkerPool
	router *affinityRouter
}

// GroupExecutor owns a fixed set of bounded pools and pins every caller
// identity to one of them. Spreading callers over several pools keeps many
// I/O goroutines from contending on a single queue lock.
type GroupExecutor struct {
	mu      sync.Mutex // serializes Initialize and Close
	state   atomic.Int32
	runtime atomic.Pointer[groupRuntime]
	opts    options
}

// NewGroupExecutor creates an uninitialized group
func NewGroupExecutor(opts ...Option) *GroupExecutor {
	return &GroupExecutor{opts: applyOptions(opts)}
}

// Initialize validates cfg and eagerly creates cfg.GroupCount pools.
// ctx is handed to every task executed by the group.
func (g *GroupExecutor) Initialize(ctx context.Context, cfg GroupConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.State() != StateUninitialized {
		return ErrAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pools := make([]WorkerPool, cfg.GroupCount)
	for i := range pools {
		pools[i] = NewWorkerPool(ctx, cfg.PoolConfig(),
			WithLogger(g.opts.logger),
			WithObserver(g.opts.observer),
			withTracer(g.opts.tracer),
			withIndex(i),
		)
	}
	g.runtime.Store(&groupRuntime{
		pools:  pools,
		router: newAffinityRouter(cfg.GroupCount),
	})
	g.state.Store(int32(StateAccepting))

	g.opts.logger.Infof("executor group initialized with %d pools", cfg.GroupCount)
	return nil
}

// Submit routes task to the pool pinned to identity and returns that pool's
// verdict: nil, ErrRejected or ErrClosed. It never blocks.
func (g *GroupExecutor) Submit(identity Identity, task Task) error {
	if task == nil {
		return ErrNilTask
	}

	switch g.State() {
	case StateUninitialized:
		g.opts.observer.TaskRejected(NoPool, ErrNotInitialized)
		return ErrNotInitialized
	case StateClosed:
		g.opts.observer.TaskRejected(NoPool, ErrClosed)
		return ErrClosed
	}

	rt := g.runtime.Load()
	// A Close racing with this call is caught by the pool, which then reports ErrClosed.
	return rt.pools[rt.router.Resolve(identity)].Submit(task)
}

// SubmitContext is Submit with the identity taken from ctx (see WithIdentity).
// A context without identity shares the empty identity with every other such caller.
func (g *GroupExecutor) SubmitContext(ctx context.Context, task Task) error {
	id, _ := IdentityFrom(ctx)
	return g.Submit(id, task)
}

// Bind returns an Executor that submits with a fixed identity. An I/O
// goroutine typically binds once and keeps the Executor for its lifetime.
func (g *GroupExecutor) Bind(identity Identity) Executor {
	return &boundExecutor{group: g, identity: identity}
}

// ListPools returns a snapshot of every pool, in index order.
// It is empty unless the group is accepting work.
func (g *GroupExecutor) ListPools() []PoolStats {
	if g.State() != StateAccepting {
		return nil
	}
	rt := g.runtime.Load()
	stats := make([]PoolStats, len(rt.pools))
	for i, p := range rt.pools {
		stats[i] = p.Stats()
	}
	return stats
}

// Stats aggregates the statistics of every pool
func (g *GroupExecutor) Stats() ExecutorStats {
	return executorStats(g.ListPools()...)
}

// AssignedIdentities returns the number of identities pinned to a pool
func (g *GroupExecutor) AssignedIdentities() int {
	rt := g.runtime.Load()
	if rt == nil || g.State() != StateAccepting {
		return 0
	}
	return rt.router.Assigned()
}

// State returns the current lifecycle state
func (g *GroupExecutor) State() GroupState {
	return GroupState(g.state.Load())
}

// Close stops admission on every pool in index order and forgets all
// identity assignments. Queued and running tasks still complete. Calling
// Close again is a no-op.
func (g *GroupExecutor) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.State()
	if prev == StateClosed {
		return nil
	}
	g.state.Store(int32(StateClosed))
	if prev == StateUninitialized {
		return nil
	}

	rt := g.runtime.Load()
	for _, p := range rt.pools {
		p.Close()
	}
	rt.router.Reset()

	g.opts.logger.Infof("executor group closed")
	return nil
}

// Shutdown closes the group and waits for every pool to drain, up to ctx.
func (g *GroupExecutor) Shutdown(ctx context.Context) error {
	if err := g.Close(); err != nil {
		return err
	}

	rt := g.runtime.Load()
	if rt == nil {
		return nil
	}
	var errs []error
	for _, p := range rt.pools {
		if err := p.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
