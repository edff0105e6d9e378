package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source is a key-value configuration provider.
// ok is false when the key is absent; err reports provider failures only.
type Source interface {
	Lookup(ctx context.Context, key string) (value string, ok bool, err error)
}

// MapSource serves keys from an in-memory map
type MapSource map[string]string

// Lookup implements Source
func (m MapSource) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

// EnvSource serves keys from environment variables named by EnvName
type EnvSource struct {
	Prefix string
}

// Lookup implements Source
func (e EnvSource) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := os.LookupEnv(EnvName(e.Prefix, key))
	if !ok || strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (e EnvSource) String() string {
	return "env:" + e.Prefix
}

// ChainSource asks each source in order; the first one holding the key wins
type ChainSource []Source

// Chain layers sources, highest precedence first. Nil sources are skipped.
func Chain(sources ...Source) ChainSource {
	chain := make(ChainSource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			chain = append(chain, s)
		}
	}
	return chain
}

// Lookup implements Source
func (c ChainSource) Lookup(ctx context.Context, key string) (string, bool, error) {
	for _, s := range c {
		v, ok, err := s.Lookup(ctx, key)
		if err != nil {
			return "", false, fmt.Errorf("source %v: %w", s, err)
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
