package prometheus

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

const namespace = "groupexec"

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "groupexec"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics records task lifecycle events of an executor group. It implements
// concurrency.Observer and is installed with concurrency.WithObserver.
type Metrics struct {
	TasksAccepted  *prometheus.CounterVec
	TasksRejected  *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec

	// pool labels are formatted once per index
	labelMu sync.RWMutex
	labels  []string
}

var _ concurrency.Observer = (*Metrics)(nil)

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates the executor metrics on registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		TasksAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_accepted_total",
				Help:      "Total number of tasks admitted by a pool",
			},
			[]string{"pool"},
		),
		TasksRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_rejected_total",
				Help:      "Total number of tasks refused by a pool",
			},
			[]string{"pool", "reason"}, // reason: saturated, closed, not_initialized; pool "none" when refused by the group
		),
		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks that finished executing",
			},
			[]string{"pool", "outcome"}, // outcome: ok, error
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "task_duration_seconds",
				Help:      "Task execution time in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"pool"},
		),
	}
}

// TaskAccepted implements concurrency.Observer
func (m *Metrics) TaskAccepted(pool int) {
	m.TasksAccepted.WithLabelValues(m.poolLabel(pool)).Inc()
}

// TaskRejected implements concurrency.Observer
func (m *Metrics) TaskRejected(pool int, err error) {
	m.TasksRejected.WithLabelValues(m.poolLabel(pool), rejectReason(err)).Inc()
}

// TaskCompleted implements concurrency.Observer
func (m *Metrics) TaskCompleted(pool int, elapsed time.Duration, err error) {
	label := m.poolLabel(pool)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.TasksCompleted.WithLabelValues(label, outcome).Inc()
	m.TaskDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// poolLabel formats a pool index; concurrency.NoPool becomes "none"
func (m *Metrics) poolLabel(pool int) string {
	if pool < 0 {
		return "none"
	}
	m.labelMu.RLock()
	if pool < len(m.labels) {
		l := m.labels[pool]
		m.labelMu.RUnlock()
		return l
	}
	m.labelMu.RUnlock()

	m.labelMu.Lock()
	defer m.labelMu.Unlock()
	for i := len(m.labels); i <= pool; i++ {
		m.labels = append(m.labels, strconv.Itoa(i))
	}
	return m.labels[pool]
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, concurrency.ErrClosed):
		return "closed"
	case errors.Is(err, concurrency.ErrNotInitialized):
		return "not_initialized"
	default:
		return "saturated"
	}
}
