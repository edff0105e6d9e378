package concurrency

import (
	"strconv"
	"time"
)

const (
	// Unbounded marks a pool queue without a capacity limit
	Unbounded = -1

	DefaultGroupCount     = 2
	DefaultMaxWorkers     = 100
	DefaultCoreWorkers    = 25
	DefaultMaxIdleSeconds = 60
)

// Tunables holds raw executor settings as read from a configuration provider.
// A nil field means the key was absent.
type Tunables struct {
	GroupCount  *int
	CoreWorkers *int
	MaxWorkers  *int

	// LegacyMaxWorkers is the deprecated alias of MaxWorkers, consulted only
	// when MaxWorkers is absent.
	LegacyMaxWorkers *int

	MaxIdleSeconds *int
	MaxQueueSize   *int
}

// GroupConfig is the validated, internally consistent configuration of a
// group executor. Every pool in the group shares the per-pool settings.
type GroupConfig struct {
	GroupCount    int
	CoreWorkers   int
	MaxWorkers    int
	MaxIdle       time.Duration
	QueueCapacity int // Unbounded or > 0
}

// Validate checks an explicitly constructed config. Resolve output always passes.
func (c GroupConfig) Validate() error {
	switch {
	case c.GroupCount <= 0:
		return &ConfigError{Field: "GroupCount", Value: c.GroupCount, Reason: "must be positive"}
	case c.CoreWorkers < 0:
		return &ConfigError{Field: "CoreWorkers", Value: c.CoreWorkers, Reason: "must not be negative"}
	case c.MaxWorkers <= 0:
		return &ConfigError{Field: "MaxWorkers", Value: c.MaxWorkers, Reason: "must be positive"}
	case c.MaxWorkers < c.CoreWorkers:
		return &ConfigError{Field: "MaxWorkers", Value: c.MaxWorkers, Reason: "must not be below CoreWorkers"}
	case c.MaxIdle < 0:
		return &ConfigError{Field: "MaxIdle", Value: int(c.MaxIdle / time.Second), Reason: "must not be negative"}
	case c.QueueCapacity != Unbounded && c.QueueCapacity <= 0:
		return &ConfigError{Field: "QueueCapacity", Value: c.QueueCapacity, Reason: "must be positive or Unbounded"}
	}
	return nil
}

// Resolve turns raw tunables into a GroupConfig. It never fails: missing or
// out-of-range inputs are replaced by defaults and reported through logger.
//
// The steps are ordered: the core worker default depends on the resolved
// queue capacity, which in turn needs the max worker count settled first.
func Resolve(t Tunables, logger Logger) GroupConfig {
	if logger == nil {
		logger = NewNopLogger()
	}
	logger.Info("pool admission rules: 1. use core workers; " +
		"2. if all core workers are busy, queue the task; " +
		"3. if the queue is full, start extra workers up to the max; " +
		"4. if the queue is full and workers are at max, reject the task")

	coreWorkers := 0
	if t.CoreWorkers != nil && *t.CoreWorkers > 0 {
		coreWorkers = *t.CoreWorkers
	}

	maxWorkers := 0
	switch {
	case t.MaxWorkers != nil:
		maxWorkers = *t.MaxWorkers
	case t.LegacyMaxWorkers != nil:
		maxWorkers = *t.LegacyMaxWorkers
		logger.Warnf("deprecated max workers setting in use, value %d", maxWorkers)
	}
	maxWorkers = max(coreWorkers, maxWorkers)
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	queueCapacity := Unbounded
	if t.MaxQueueSize != nil {
		if *t.MaxQueueSize > 0 {
			queueCapacity = *t.MaxQueueSize
		} else {
			logger.Warnf("ignoring non-positive max queue size %d, using an unbounded queue", *t.MaxQueueSize)
		}
	}

	if queueCapacity == Unbounded {
		// Extra workers are only started when the queue is full, which never
		// happens here, so core has to cover the whole budget.
		coreWorkers = maxWorkers
		logger.Infof("max queue size not configured, core and max workers set to %d", maxWorkers)
	} else if coreWorkers <= 0 {
		// Capped so an explicit max below the default keeps max >= core.
		coreWorkers = min(DefaultCoreWorkers, maxWorkers)
	}

	groupCount := DefaultGroupCount
	if t.GroupCount != nil && *t.GroupCount > 0 {
		groupCount = *t.GroupCount
	}

	maxIdleSeconds := DefaultMaxIdleSeconds
	if t.MaxIdleSeconds != nil && *t.MaxIdleSeconds >= 0 {
		maxIdleSeconds = *t.MaxIdleSeconds
	}

	cfg := GroupConfig{
		GroupCount:    groupCount,
		CoreWorkers:   coreWorkers,
		MaxWorkers:    maxWorkers,
		MaxIdle:       time.Duration(maxIdleSeconds) * time.Second,
		QueueCapacity: queueCapacity,
	}
	logger.Infof("executor group=%d, per group: coreWorkers=%d, maxWorkers=%d, maxIdle=%s, queueCapacity=%s",
		cfg.GroupCount, cfg.CoreWorkers, cfg.MaxWorkers, cfg.MaxIdle, capacityString(cfg.QueueCapacity))
	return cfg
}

func capacityString(capacity int) string {
	if capacity == Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(capacity)
}

// IntPtr is a small helper for building Tunables literals
func IntPtr(v int) *int {
	return &v
}
