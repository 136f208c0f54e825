package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/oranba/product-catalog/pkg/logger"
)

// Config controls metric export.
type Config struct {
	// ServiceName identifies the service in exported metrics.
	ServiceName string
	// Endpoint is the OTLP/HTTP collector endpoint (host:port). Empty
	// disables export; instruments then record into the default no-op
	// provider and cost nothing.
	Endpoint string
	// Interval between metric exports. Defaults to 30s.
	Interval time.Duration
	// Insecure disables TLS toward the collector.
	Insecure bool
}

// Init installs the global meter provider and returns a shutdown func that
// flushes pending metrics. With no endpoint configured it is a no-op.
func Init(ctx context.Context, cfg Config, log logger.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logger.NoOp{}
	}
	if cfg.Endpoint == "" {
		log.Info("Metrics export disabled", logger.Fields{"service": cfg.ServiceName})
		return func(context.Context) error { return nil }, nil
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.Interval))),
	)
	otel.SetMeterProvider(provider)

	log.Info("Metrics export enabled", logger.Fields{
		"service":  cfg.ServiceName,
		"endpoint": cfg.Endpoint,
		"interval": cfg.Interval,
	})

	return provider.Shutdown, nil
}
