package concurrency

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/fluxorio/groupexec/pkg/core/concurrency"

// NoPool is the pool index reported for tasks the group refused before
// routing them, because it was not initialized yet or already closed.
const NoPool = -1

// Observer receives task lifecycle events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	TaskAccepted(pool int)
	TaskRejected(pool int, err error)
	TaskCompleted(pool int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) TaskAccepted(int) {}
func (nopObserver) TaskRejected(int, error) {}
func (nopObserver) TaskCompleted(int, time.Duration, error) {}

// Option configures a GroupExecutor or a standalone WorkerPool
type Option func(*options)

type options struct {
	logger   Logger
	observer Observer
	tracer   trace.Tracer
	index    int
}

func defaultOptions() options {
	return options{
		logger:   NewSlogLogger(nil),
		observer: nopObserver{},
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for task failures and lifecycle messages
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver installs a task lifecycle observer (metrics)
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithTracerProvider wraps every executed task in a span from tp
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

func withTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

func withIndex(index int) Option {
	return func(o *options) {
		o.index = index
	}
}
