package concurrency

import (
	"context"
)

// Task represents a unit of work handed to the group executor
type Task interface {
	// Execute performs the task work.
	// The pool never cancels ctx; a task that needs a deadline brings its own.
	Execute(ctx context.Context) error

	// Name returns a human-readable name for the task (logging, spans)
	Name() string
}

// TaskFunc is a function type that implements Task
type TaskFunc func(ctx context.Context) error

// Execute implements Task interface for TaskFunc
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Name returns a default name for TaskFunc
func (f TaskFunc) Name() string {
	return "TaskFunc"
}

// NamedTask wraps a TaskFunc with a custom name
type NamedTask struct {
	name string
	task TaskFunc
}

// NewNamedTask creates a new NamedTask
func NewNamedTask(name string, task TaskFunc) *NamedTask {
	return &NamedTask{
		name: name,
		task: task,
	}
}

// Execute implements Task interface
func (nt *NamedTask) Execute(ctx context.Context) error {
	return nt.task(ctx)
}

// Name returns the task name
func (nt *NamedTask) Name() string {
	return nt.name
}

// Runnable adapts a plain func() into a Task, for callers handing off
// fire-and-forget work from an I/O goroutine.
func Runnable(name string, fn func()) Task {
	return NewNamedTask(name, func(context.Context) error {
		fn()
		return nil
	})
}
