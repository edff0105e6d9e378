package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

// Executor configuration keys. The names are kept for compatibility with
// existing deployments.
const (
	KeyGroup         = "servicecomb.executor.default.group"
	KeyCoreThreads   = "servicecomb.executor.default.coreThreads-per-group"
	KeyMaxThreads    = "servicecomb.executor.default.maxThreads-per-group"
	KeyMaxIdleSecond = "servicecomb.executor.default.maxIdleSecond-per-group"
	KeyMaxQueueSize  = "servicecomb.executor.default.maxQueueSize-per-group"

	// Deprecated: use KeyMaxThreads
	KeyLegacyMaxThreads = "servicecomb.executor.default.thread-per-group"
)

// ReadTunables reads the executor keys from src. A value that is not an
// integer is logged and treated as absent; only provider failures are
// returned as errors.
func ReadTunables(ctx context.Context, src Source, logger concurrency.Logger) (concurrency.Tunables, error) {
	if logger == nil {
		logger = concurrency.NewNopLogger()
	}

	var t concurrency.Tunables
	fields := []struct {
		key    string
		target **int
	}{
		{KeyGroup, &t.GroupCount},
		{KeyCoreThreads, &t.CoreWorkers},
		{KeyMaxThreads, &t.MaxWorkers},
		{KeyLegacyMaxThreads, &t.LegacyMaxWorkers},
		{KeyMaxIdleSecond, &t.MaxIdleSeconds},
		{KeyMaxQueueSize, &t.MaxQueueSize},
	}

	for _, f := range fields {
		raw, ok, err := src.Lookup(ctx, f.key)
		if err != nil {
			return concurrency.Tunables{}, fmt.Errorf("read %s: %w", f.key, err)
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			logger.Warnf("ignoring %s=%q: not an integer", f.key, raw)
			continue
		}
		*f.target = &n
	}
	return t, nil
}

// ResolveGroupConfig reads the tunables from src and resolves them
func ResolveGroupConfig(ctx context.Context, src Source, logger concurrency.Logger) (concurrency.GroupConfig, error) {
	t, err := ReadTunables(ctx, src, logger)
	if err != nil {
		return concurrency.GroupConfig{}, err
	}
	return concurrency.Resolve(t, logger), nil
}
