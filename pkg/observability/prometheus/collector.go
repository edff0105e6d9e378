package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

// PoolLister is satisfied by *concurrency.GroupExecutor
type PoolLister interface {
	ListPools() []concurrency.PoolStats
}

// Collector exports per-pool gauges from a PoolLister on every scrape.
// A closed or uninitialized group exports nothing.
type Collector struct {
	lister PoolLister

	workers        *prometheus.Desc
	idleWorkers    *prometheus.Desc
	largestWorkers *prometheus.Desc
	coreWorkers    *prometheus.Desc
	maxWorkers     *prometheus.Desc
	queuedTasks    *prometheus.Desc
	queueCapacity  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector over lister. Register it with
// prometheus.Registerer.MustRegister.
func NewCollector(lister PoolLister) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", name),
			help,
			[]string{"pool"},
			nil,
		)
	}

	return &Collector{
		lister:         lister,
		workers:        desc("workers", "Number of live workers"),
		idleWorkers:    desc("idle_workers", "Number of workers waiting for a task"),
		largestWorkers: desc("largest_workers", "Highest number of live workers observed"),
		coreWorkers:    desc("core_workers", "Configured core worker count"),
		maxWorkers:     desc("max_workers", "Configured maximum worker count"),
		queuedTasks:    desc("queued_tasks", "Number of tasks waiting in the queue"),
		queueCapacity:  desc("queue_capacity", "Queue capacity, -1 when unbounded"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.idleWorkers
	ch <- c.largestWorkers
	ch <- c.coreWorkers
	ch <- c.maxWorkers
	ch <- c.queuedTasks
	ch <- c.queueCapacity
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.lister.ListPools() {
		pool := strconv.Itoa(s.Index)
		gauge := func(d *prometheus.Desc, v int) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), pool)
		}
		gauge(c.workers, s.Workers)
		gauge(c.idleWorkers, s.IdleWorkers)
		gauge(c.largestWorkers, s.LargestWorkers)
		gauge(c.coreWorkers, s.CoreWorkers)
		gauge(c.maxWorkers, s.MaxWorkers)
		gauge(c.queuedTasks, s.QueuedTasks)
		gauge(c.queueCapacity, s.QueueCapacity)
	}
}
