package main

import (
	"context"
	"testing"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fluxorio/groupexec/pkg/config"
	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

func runTestNATSJetStreamServer(t *testing.T) *natssrv.Server {
	t.Helper()

	opts := &natssrv.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}
	s, err := natssrv.NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestOpenKVSource_WaitsForBucket(t *testing.T) {
	s := runTestNATSJetStreamServer(t)

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		time.Sleep(150 * time.Millisecond)
		js, err := jetstream.New(nc)
		if err != nil {
			return
		}
		kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: "late"})
		if err != nil {
			return
		}
		_, _ = kv.PutString(ctx, config.KeyGroup, "7")
	}()

	src, err := openKVSource(ctx, nc, "late", concurrency.NewNopLogger())
	if err != nil {
		t.Fatalf("openKVSource: %v", err)
	}

	// the put may land just after the bucket shows up
	deadline := time.Now().Add(5 * time.Second)
	for {
		v, ok, err := src.Lookup(ctx, config.KeyGroup)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if ok {
			if v != "7" {
				t.Errorf("group = %q, want 7", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("key never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOpenKVSource_GivesUp(t *testing.T) {
	s := runTestNATSJetStreamServer(t)

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := openKVSource(ctx, nc, "never", concurrency.NewNopLogger()); err == nil {
		t.Fatal("openKVSource succeeded for a missing bucket")
	}
}
