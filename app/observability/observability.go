package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Round-Table-Club/battleboard-bot/config"
)

// Observability bundles the logger, meter, and tracer handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Meter    metric.Meter
	Tracer   trace.Tracer
	Registry *promclient.Registry

	meterProvider *sdkmetric.MeterProvider
}

// New builds the shared observability stack: a JSON slog logger, an OTel
// meter backed by a Prometheus registry, and a tracer. Traces are no-op
// unless an external collector is wired in; metrics are always live.
func New(cfg config.ObservabilityConfig) (*Observability, error) {
	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := meterProvider.Meter("battleboard-bot")

	tracer := tracenoop.NewTracerProvider().Tracer("battleboard-bot")

	return &Observability{
		Logger:        logger,
		Meter:         meter,
		Tracer:        tracer,
		Registry:      registry,
		meterProvider: meterProvider,
	}, nil
}

// Close flushes and shuts down the metric provider.
func (o *Observability) Close(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
