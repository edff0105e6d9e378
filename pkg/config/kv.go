package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KVSource serves keys from a NATS JetStream key-value bucket, so a fleet of
// hosts can share executor tunables. Keys are stored verbatim
// (e.g. "servicecomb.executor.default.group").
type KVSource struct {
	kv jetstream.KeyValue
}

// NewKVSource wraps an already opened bucket
func NewKVSource(kv jetstream.KeyValue) *KVSource {
	return &KVSource{kv: kv}
}

// OpenKVSource binds to an existing bucket on nc
func OpenKVSource(ctx context.Context, nc *nats.Conn, bucket string) (*KVSource, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("open kv bucket %q: %w", bucket, err)
	}
	return NewKVSource(kv), nil
}

// Lookup implements Source. Deleted and purged keys read as absent.
func (s *KVSource) Lookup(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

func (s *KVSource) String() string {
	return "kv:" + s.kv.Bucket()
}
