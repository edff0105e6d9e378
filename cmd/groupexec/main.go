// Command groupexec hosts an executor group behind a small fasthttp server
// and drives it with synthetic callers, one identity each.
//
// Executor tunables are read from GROUPEXEC_SERVICECOMB_EXECUTOR_DEFAULT_*
// environment variables, the config file and, when nats.url is set, a
// JetStream key-value bucket, in that order of precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fluxorio/groupexec/pkg/config"
	"github.com/fluxorio/groupexec/pkg/core/concurrency"
	promx "github.com/fluxorio/groupexec/pkg/observability/prometheus"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "groupexec.yaml"), "config file (yaml or json)")
	traceTasks := flag.Bool("trace", false, "print a span per executed task to stdout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *traceTasks); err != nil {
		log.Fatalf("groupexec: %v", err)
	}
}

func run(ctx context.Context, configPath string, traceTasks bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := concurrency.NewSlogLogger(newSlogLogger(cfg.Observability.LogLevel))

	src, closeSource, err := executorSource(ctx, cfg, configPath, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	groupCfg, err := config.ResolveGroupConfig(ctx, src, logger)
	if err != nil {
		return err
	}

	tp, shutdownTracing, err := newTracerProvider(cfg.Observability.Trace || traceTasks)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warnf("tracer shutdown: %v", err)
		}
	}()

	group := concurrency.NewGroupExecutor(
		concurrency.WithLogger(logger),
		concurrency.WithObserver(promx.GetMetrics()),
		concurrency.WithTracerProvider(tp),
	)
	if err := group.Initialize(ctx, groupCfg); err != nil {
		return err
	}

	promx.DefaultRegisterer.MustRegister(
		promx.NewCollector(group),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &fasthttp.Server{
		Name:    "groupexec",
		Handler: newHandler(group, promx.FastHTTPHandler(promx.DefaultRegistry)),
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.HTTP.Listen)
		serveErr <- server.ListenAndServe(cfg.HTTP.Listen)
	}()

	loadDone := make(chan struct{})
	go func() {
		defer close(loadDone)
		runLoad(ctx, group, cfg.Load, logger)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Errorf("http server: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if shutdownErr := group.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warnf("executor shutdown: %v", shutdownErr)
	}
	<-loadDone
	if shutdownErr := server.ShutdownWithContext(shutdownCtx); shutdownErr != nil {
		logger.Warnf("http shutdown: %v", shutdownErr)
	}
	return err
}

func newSlogLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newTracerProvider returns a stdout exporting provider when enabled and a
// no-op provider otherwise.
func newTracerProvider(enabled bool) (trace.TracerProvider, func(context.Context) error, error) {
	if !enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return tp, tp.Shutdown, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
