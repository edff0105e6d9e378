package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

type failingSource struct{}

func (failingSource) Lookup(context.Context, string) (string, bool, error) {
	return "", false, errors.New("provider down")
}

func TestReadTunables_AbsentKeys(t *testing.T) {
	tun, err := ReadTunables(context.Background(), MapSource{}, concurrency.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, concurrency.Tunables{}, tun)

	cfg := concurrency.Resolve(tun, concurrency.NewNopLogger())
	assert.Equal(t, 2, cfg.GroupCount)
}

func TestReadTunables_ParsesAndSkipsGarbage(t *testing.T) {
	src := MapSource{
		KeyGroup:            "4",
		KeyCoreThreads:      " 8 ",
		KeyLegacyMaxThreads: "32",
		KeyMaxIdleSecond:    "ten",
		KeyMaxQueueSize:     "256",
	}

	tun, err := ReadTunables(context.Background(), src, nil)
	require.NoError(t, err)

	require.NotNil(t, tun.GroupCount)
	assert.Equal(t, 4, *tun.GroupCount)
	require.NotNil(t, tun.CoreWorkers)
	assert.Equal(t, 8, *tun.CoreWorkers)
	assert.Nil(t, tun.MaxWorkers)
	require.NotNil(t, tun.LegacyMaxWorkers)
	assert.Equal(t, 32, *tun.LegacyMaxWorkers)
	assert.Nil(t, tun.MaxIdleSeconds, "non-integer value is treated as absent")
	require.NotNil(t, tun.MaxQueueSize)
	assert.Equal(t, 256, *tun.MaxQueueSize)

	cfg := concurrency.Resolve(tun, nil)
	assert.Equal(t, concurrency.GroupConfig{
		GroupCount:    4,
		CoreWorkers:   8,
		MaxWorkers:    32,
		MaxIdle:       60 * time.Second,
		QueueCapacity: 256,
	}, cfg)
}

func TestReadTunables_ProviderError(t *testing.T) {
	_, err := ReadTunables(context.Background(), failingSource{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyGroup)
}

func TestChainSource_Precedence(t *testing.T) {
	t.Setenv(EnvName("GX", KeyGroup), "6")
	t.Setenv(EnvName("GX", KeyMaxThreads), "")

	chain := Chain(
		EnvSource{Prefix: "GX"},
		nil,
		MapSource{KeyGroup: "3", KeyMaxThreads: "40"},
	)

	cfg, err := ResolveGroupConfig(context.Background(), chain, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.GroupCount, "env wins over the map")
	assert.Equal(t, 40, cfg.MaxWorkers, "empty env value falls through")

	_, _, err = Chain(MapSource{}, failingSource{}).Lookup(context.Background(), KeyGroup)
	require.Error(t, err)
}

func TestFileSource(t *testing.T) {
	nested := createTempFile(t, "executor.yaml", `
servicecomb:
  executor:
    default:
      group: 3
      maxQueueSize-per-group: 64
      coreThreads-per-group: ~
`)
	flat := createTempFile(t, "executor.json", `{
  "servicecomb.executor.default.group": 5,
  "servicecomb.executor.default.maxThreads-per-group": 1000000
}`)

	src, err := NewFileSource(nested)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyGroup, KeyMaxQueueSize}, src.Keys())

	v, ok, err := src.Lookup(context.Background(), KeyMaxQueueSize)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "64", v)

	jsonSrc, err := NewFileSource(flat)
	require.NoError(t, err)
	cfg, err := ResolveGroupConfig(context.Background(), Chain(jsonSrc, src), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.GroupCount)
	assert.Equal(t, 1000000, cfg.MaxWorkers)
	assert.Equal(t, 64, cfg.QueueCapacity)
	assert.Equal(t, 25, cfg.CoreWorkers)

	_, err = NewFileSource(createTempFile(t, "broken.yaml", "servicecomb: [unclosed"))
	require.Error(t, err)
}
