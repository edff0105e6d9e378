package concurrency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// boundedPool implements WorkerPool.
//
// Idle workers park on their own hand-off channel and are kept in a LIFO
// stack, so the most recently active workers get reused and the cold ones
// reach their idle timeout. A worker only parks when the queue is empty,
// which keeps admission FIFO.
type boundedPool struct {
	cfg   WorkerPoolConfig
	index int
	ctx   context.Context

	mu      sync.Mutex
	queue   *taskQueue
	idle    []chan Task // parked workers, most recent last
	workers int
	largest int
	closed  bool
	wg      sync.WaitGroup

	logger   Logger
	observer Observer
	tracer   trace.Tracer

	submittedTasks int64
	completedTasks int64
	failedTasks    int64
	rejectedTasks  int64
}

// NewWorkerPool creates a WorkerPool. Workers are started lazily on submission.
// ctx is handed to every task; the pool itself never cancels it.
func NewWorkerPool(ctx context.Context, config WorkerPoolConfig, opts ...Option) WorkerPool {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if config.CoreWorkers < 0 {
		config.CoreWorkers = 0
	}
	if config.CoreWorkers > config.MaxWorkers {
		config.CoreWorkers = config.MaxWorkers
	}
	if config.MaxIdle < 0 {
		config.MaxIdle = 0
	}
	o := applyOptions(opts)

	return &boundedPool{
		cfg:      config,
		index:    o.index,
		ctx:      ctx,
		queue:    newTaskQueue(config.QueueCapacity),
		logger:   o.logger,
		observer: o.observer,
		tracer:   o.tracer,
	}
}

// Submit implements WorkerPool interface
func (p *boundedPool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	err := p.admit(task)
	if err != nil {
		atomic.AddInt64(&p.rejectedTasks, 1)
		p.observer.TaskRejected(p.index, err)
		return err
	}
	atomic.AddInt64(&p.submittedTasks, 1)
	p.observer.TaskAccepted(p.index)
	return nil
}

func (p *boundedPool) admit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.workers < p.cfg.CoreWorkers {
		p.startWorkerLocked(task)
		return nil
	}

	if n := len(p.idle); n > 0 {
		ch := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		ch <- task // buffered, the parked worker is the only receiver
		return nil
	}

	if p.queue.offer(task) {
		if p.workers == 0 {
			// CoreWorkers == 0: nobody would ever drain the queue
			p.startWorkerLocked(nil)
		}
		return nil
	}

	if p.workers < p.cfg.MaxWorkers {
		p.startWorkerLocked(task)
		return nil
	}

	return ErrRejected
}

func (p *boundedPool) startWorkerLocked(first Task) {
	p.workers++
	if p.workers > p.largest {
		p.largest = p.workers
	}
	p.wg.Add(1)
	go p.worker(first)
}

// worker runs tasks until the pool is closed and drained, or until it has
// been idle for MaxIdle while the pool holds more than CoreWorkers workers.
func (p *boundedPool) worker(task Task) {
	defer p.wg.Done()

	ch := make(chan Task, 1)
	timedOut := false

	for {
		if task != nil {
			p.run(task)
			task = nil
		}

		p.mu.Lock()
		if next, ok := p.queue.poll(); ok {
			p.mu.Unlock()
			task = next
			timedOut = false
			continue
		}
		surplus := p.workers > p.cfg.CoreWorkers
		if p.closed || (surplus && (timedOut || p.cfg.MaxIdle == 0)) {
			p.workers--
			p.mu.Unlock()
			return
		}
		p.idle = append(p.idle, ch)
		p.mu.Unlock()

		task, timedOut = p.park(ch, surplus)
	}
}

// park waits on the worker's hand-off channel. Surplus workers give up after
// MaxIdle; timedOut is only reported when the worker managed to unpark itself
// before anyone handed it a task.
func (p *boundedPool) park(ch chan Task, surplus bool) (task Task, timedOut bool) {
	if !surplus {
		return <-ch, false
	}

	timer := time.NewTimer(p.cfg.MaxIdle)
	defer timer.Stop()

	select {
	case task = <-ch:
		return task, false
	case <-timer.C:
	}

	p.mu.Lock()
	removed := p.removeIdleLocked(ch)
	p.mu.Unlock()
	if removed {
		return nil, true
	}
	// Lost the race against Submit or Close; the channel already holds the outcome.
	return <-ch, false
}

func (p *boundedPool) removeIdleLocked(ch chan Task) bool {
	for i, c := range p.idle {
		if c == ch {
			copy(p.idle[i:], p.idle[i+1:])
			p.idle[len(p.idle)-1] = nil
			p.idle = p.idle[:len(p.idle)-1]
			return true
		}
	}
	return false
}

// run executes a task, recording its outcome. A panicking task is logged and
// counted as failed; the worker keeps going.
func (p *boundedPool) run(task Task) {
	start := time.Now()
	ctx, span := p.tracer.Start(p.ctx, task.Name(),
		trace.WithAttributes(attribute.Int("groupexec.pool", p.index)))

	err := p.execute(ctx, task)
	if err != nil {
		atomic.AddInt64(&p.failedTasks, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Errorf("pool %d: task %s failed: %v", p.index, task.Name(), err)
	}
	span.End()

	atomic.AddInt64(&p.completedTasks, 1)
	p.observer.TaskCompleted(p.index, time.Since(start), err)
}

func (p *boundedPool) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}

// Close implements WorkerPool interface
func (p *boundedPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	// Parked workers wake up on the closed channel, find the queue empty and exit.
	for _, ch := range p.idle {
		close(ch)
	}
	p.idle = nil
}

// Wait implements WorkerPool interface
func (p *boundedPool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool %d: wait timeout: %w", p.index, ctx.Err())
	}
}

// Stats implements WorkerPool interface
func (p *boundedPool) Stats() PoolStats {
	p.mu.Lock()
	workers := p.workers
	idle := len(p.idle)
	largest := p.largest
	queued := p.queue.len()
	running := !p.closed
	p.mu.Unlock()

	return PoolStats{
		Index:          p.index,
		CoreWorkers:    p.cfg.CoreWorkers,
		MaxWorkers:     p.cfg.MaxWorkers,
		Workers:        workers,
		IdleWorkers:    idle,
		LargestWorkers: largest,
		QueuedTasks:    queued,
		QueueCapacity:  p.queue.Capacity(),
		SubmittedTasks: atomic.LoadInt64(&p.submittedTasks),
		CompletedTasks: atomic.LoadInt64(&p.completedTasks),
		FailedTasks:    atomic.LoadInt64(&p.failedTasks),
		RejectedTasks:  atomic.LoadInt64(&p.rejectedTasks),
		Running:        running,
	}
}

// IsRunning implements WorkerPool interface
func (p *boundedPool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}
