package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jpillora/backoff"
	"github.com/nats-io/nats.go"

	"github.com/fluxorio/groupexec/pkg/config"
	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

// envPrefix prefixes both host settings (GROUPEXEC_HTTP_LISTEN) and executor
// keys (GROUPEXEC_SERVICECOMB_EXECUTOR_DEFAULT_GROUP).
const envPrefix = "GROUPEXEC"

// AppConfig is the demo host configuration. The same file may also carry
// the servicecomb.executor.* keys read by the executor group.
type AppConfig struct {
	HTTP          HTTPConfig          `yaml:"http" json:"http"`
	Load          LoadConfig          `yaml:"load" json:"load"`
	NATS          NATSConfig          `yaml:"nats" json:"nats"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// LoadConfig drives the synthetic callers. Each caller has its own
// identity and submits one task per interval.
type LoadConfig struct {
	Callers    int `yaml:"callers" json:"callers"`
	IntervalMS int `yaml:"interval_ms" json:"interval_ms"`
	WorkMS     int `yaml:"work_ms" json:"work_ms"`
}

// NATSConfig enables the shared key-value tunables when URL is set
type NATSConfig struct {
	URL    string `yaml:"url" json:"url"`
	Bucket string `yaml:"bucket" json:"bucket"`
}

type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	Trace    bool   `yaml:"trace" json:"trace"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		HTTP: HTTPConfig{Listen: ":9100"},
		Load: LoadConfig{
			Callers:    16,
			IntervalMS: 10,
			WorkMS:     5,
		},
		NATS: NATSConfig{Bucket: "groupexec"},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// loadConfig starts from defaults, overlays path when it exists and then
// GROUPEXEC_* environment variables.
func loadConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		err = config.LoadWithEnv(path, envPrefix, cfg)
	} else {
		err = config.ApplyEnvOverrides(envPrefix, cfg)
	}
	if err != nil {
		return nil, err
	}

	err = config.Validate(cfg,
		config.RequiredFields("HTTP.Listen"),
		config.RangeValidator("Load.Callers", 0, 10000),
		config.RangeValidator("Load.IntervalMS", 1, 60000),
		config.RangeValidator("Load.WorkMS", 0, 60000),
		config.AtMostFieldValidator("Load.WorkMS", "Load.IntervalMS"),
		config.OneOfValidator("Observability.LogLevel", "debug", "info", "warn", "error"),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// executorSource builds the tunables chain: environment, then the config
// file, then the NATS bucket. The returned func releases the connection.
func executorSource(ctx context.Context, cfg *AppConfig, path string, logger concurrency.Logger) (config.Source, func(), error) {
	sources := []config.Source{config.EnvSource{Prefix: envPrefix}}
	cleanup := func() {}

	exists, err := fileExists(path)
	if err != nil {
		return nil, cleanup, err
	}
	if exists {
		fs, err := config.NewFileSource(path)
		if err != nil {
			return nil, cleanup, err
		}
		sources = append(sources, fs)
	}

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("groupexec"))
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect nats: %w", err)
		}
		kv, err := openKVSource(ctx, nc, cfg.NATS.Bucket, logger)
		if err != nil {
			nc.Close()
			return nil, cleanup, err
		}
		sources = append(sources, kv)
		cleanup = nc.Close
	}

	for _, s := range sources {
		logger.Debugf("executor tunables source: %v", s)
	}
	return config.Chain(sources...), cleanup, nil
}

// fileExists reports whether path can be read as the config file. Only a
// missing file counts as absent; any other stat failure is returned.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat config %s: %w", path, err)
	}
}

// openKVSource retries while the bucket is not there yet, which is common
// when the host starts alongside the process that provisions it.
func openKVSource(ctx context.Context, nc *nats.Conn, bucket string, logger concurrency.Logger) (*config.KVSource, error) {
	const retryCount = 5
	interval := backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		kv, err := config.OpenKVSource(ctx, nc, bucket)
		if err == nil {
			return kv, nil
		}
		if interval.Attempt() >= retryCount-1 {
			return nil, fmt.Errorf("giving up after %d attempts: %w", retryCount, err)
		}

		wait := interval.Duration()
		logger.Warnf("%v, retrying in %s", err, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
