package concurrency

// ExecutorStats provides statistics about executor performance
type ExecutorStats struct {
	QueuedTasks      int64   // Current number of queued tasks
	ActiveWorkers    int     // Number of live worker goroutines
	CompletedTasks   int64   // Total completed tasks
	RejectedTasks    int64   // Total rejected tasks (backpressure)
	QueueCapacity    int     // Maximum queue capacity, or Unbounded
	QueueUtilization float64 // Queue utilization percentage, 0 when unbounded
}

// Executor is what an I/O goroutine holds to hand off work.
// Submit never blocks; it returns ErrRejected (or ErrClosed) under backpressure.
type Executor interface {
	// Submit queues a task for execution
	Submit(task Task) error

	// Stats returns statistics of the pool(s) behind this executor
	Stats() ExecutorStats
}

// boundExecutor routes every submission with one fixed identity
type boundExecutor struct {
	group    *GroupExecutor
	identity Identity
}

// Submit implements Executor interface
func (b *boundExecutor) Submit(task Task) error {
	return b.group.Submit(b.identity, task)
}

// Stats implements Executor interface. It reports the pool the identity is
// pinned to, or zero values before its first submission.
func (b *boundExecutor) Stats() ExecutorStats {
	rt := b.group.runtime.Load()
	if rt == nil || b.group.State() != StateAccepting {
		return ExecutorStats{}
	}
	idx, ok := rt.router.Lookup(b.identity)
	if !ok {
		return ExecutorStats{}
	}
	return executorStats(rt.pools[idx].Stats())
}

func executorStats(pools ...PoolStats) ExecutorStats {
	var stats ExecutorStats
	for _, ps := range pools {
		stats.QueuedTasks += int64(ps.QueuedTasks)
		stats.ActiveWorkers += ps.Workers
		stats.CompletedTasks += ps.CompletedTasks
		stats.RejectedTasks += ps.RejectedTasks
		if ps.QueueCapacity == Unbounded || stats.QueueCapacity == Unbounded {
			stats.QueueCapacity = Unbounded
		} else {
			stats.QueueCapacity += ps.QueueCapacity
		}
	}
	if stats.QueueCapacity > 0 {
		stats.QueueUtilization = float64(stats.QueuedTasks) / float64(stats.QueueCapacity) * 100.0
		if stats.QueueUtilization > 100.0 {
			stats.QueueUtilization = 100.0
		}
	}
	return stats
}
