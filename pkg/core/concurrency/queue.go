package concurrency

import (
	"github.com/eapache/queue"
)

// taskQueue is a FIFO of tasks with an optional capacity limit.
// It is not safe for concurrent use; the owning pool guards it with its mutex.
type taskQueue struct {
	items    *queue.Queue
	capacity int
}

func newTaskQueue(capacity int) *taskQueue {
	if capacity != Unbounded && capacity < 1 {
		capacity = 1
	}
	return &taskQueue{
		items:    queue.New(),
		capacity: capacity,
	}
}

// offer appends a task unless the queue is at capacity
func (q *taskQueue) offer(task Task) bool {
	if q.full() {
		return false
	}
	q.items.Add(task)
	return true
}

// poll removes the oldest task. ok is false when the queue is empty.
func (q *taskQueue) poll() (Task, bool) {
	if q.items.Length() == 0 {
		return nil, false
	}
	return q.items.Remove().(Task), true
}

func (q *taskQueue) full() bool {
	return q.capacity != Unbounded && q.items.Length() >= q.capacity
}

func (q *taskQueue) len() int {
	return q.items.Length()
}

// Capacity returns the limit, or Unbounded
func (q *taskQueue) Capacity() int {
	return q.capacity
}
