package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

type loadStats struct {
	submitted atomic.Int64
	rejected  atomic.Int64
}

// runLoad starts cfg.Callers goroutines, each bound to its own identity,
// and blocks until ctx is done or the group closes.
func runLoad(ctx context.Context, group *concurrency.GroupExecutor, cfg LoadConfig, logger concurrency.Logger) *loadStats {
	stats := &loadStats{}
	interval := time.Duration(cfg.IntervalMS) * time.Millisecond
	work := time.Duration(cfg.WorkMS) * time.Millisecond

	task := concurrency.NewNamedTask("synthetic", func(ctx context.Context) error {
		timer := time.NewTimer(work)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < cfg.Callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exec := group.Bind(concurrency.NewIdentity())
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}

				err := exec.Submit(task)
				switch {
				case err == nil:
					stats.submitted.Add(1)
				case errors.Is(err, concurrency.ErrClosed):
					return
				case errors.Is(err, concurrency.ErrRejected):
					stats.rejected.Add(1)
					logger.Debugf("caller %d: task rejected", i)
				default:
					logger.Errorf("caller %d: submit: %v", i, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	logger.Infof("load stopped: %d submitted, %d rejected", stats.submitted.Load(), stats.rejected.Load())
	return stats
}
