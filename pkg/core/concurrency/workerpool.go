package concurrency

import (
	"context"
	"time"
)

// WorkerPool is one bounded pool of worker goroutines with its own FIFO queue.
//
// Admission order for Submit:
//  1. hand the task to an idle worker, or start a core worker for it
//  2. queue it if the queue has room
//  3. start an extra worker for it while below MaxWorkers
//  4. reject with ErrRejected
//
// Submit never blocks.
type WorkerPool interface {
	// Submit admits a task or reports ErrRejected / ErrClosed
	Submit(task Task) error

	// Close stops admission. Queued and running tasks still complete.
	Close()

	// Wait blocks until every worker has exited after Close, or ctx is done
	Wait(ctx context.Context) error

	// Stats returns a snapshot of the pool counters
	Stats() PoolStats

	// IsRunning returns true until Close is called
	IsRunning() bool
}

// WorkerPoolConfig configures a single WorkerPool
type WorkerPoolConfig struct {
	CoreWorkers   int           // Workers kept alive while idle
	MaxWorkers    int           // Hard limit on live workers
	MaxIdle       time.Duration // Idle time after which an extra worker exits
	QueueCapacity int           // Queue limit, or Unbounded
}

// DefaultWorkerPoolConfig returns the per-pool settings Resolve yields for empty tunables
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		CoreWorkers:   DefaultMaxWorkers,
		MaxWorkers:    DefaultMaxWorkers,
		MaxIdle:       DefaultMaxIdleSeconds * time.Second,
		QueueCapacity: Unbounded,
	}
}

// PoolConfig extracts the per-pool part of a group config
func (c GroupConfig) PoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		CoreWorkers:   c.CoreWorkers,
		MaxWorkers:    c.MaxWorkers,
		MaxIdle:       c.MaxIdle,
		QueueCapacity: c.QueueCapacity,
	}
}

// PoolStats is a read-only snapshot of one pool
type PoolStats struct {
	Index          int   // Position of the pool in its group
	CoreWorkers    int   // Configured core workers
	MaxWorkers     int   // Configured max workers
	Workers        int   // Live workers
	IdleWorkers    int   // Live workers waiting for work
	LargestWorkers int   // High-water mark of live workers
	QueuedTasks    int   // Tasks waiting in the queue
	QueueCapacity  int   // Queue limit, or Unbounded
	SubmittedTasks int64 // Tasks admitted
	CompletedTasks int64 // Tasks finished, successfully or not
	FailedTasks    int64 // Tasks that returned an error or panicked
	RejectedTasks  int64 // Tasks refused by saturation or after Close
	Running        bool  // False once closed
}
