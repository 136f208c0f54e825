// Package telemetry wires OpenTelemetry metrics for the catalog service:
// a meter provider with an optional OTLP/HTTP exporter and a cached-instrument
// helper so hot paths record without re-resolving instruments.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation timing metric names. These mirror the service's externally
// documented dashboard queries, so renaming them is a breaking change.
const (
	MetricProductFindTime     = "product.find.time"
	MetricInventoryUpdateTime = "product.inventory.update.time"
	MetricCategoryFindTime    = "category.find.time"
	MetricOrderFindTime       = "order.find.time"
	MetricOrderCreateTime     = "order.create.time"
	MetricStatusUpdateTime    = "order.status.update.time"

	MetricCacheHits   = "cache.hits"
	MetricCacheMisses = "cache.misses"
)

// Instruments holds cached metric instruments for efficient recording.
type Instruments struct {
	meter      metric.Meter
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	mu         sync.RWMutex
}

// NewInstruments creates a metrics instrument cache on the global meter
// provider.
func NewInstruments(meterName string) *Instruments {
	return &Instruments{
		meter:      otel.Meter(meterName),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// RecordCounter increments a counter metric.
func (m *Instruments) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) error {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		// Double-check after acquiring write lock
		if counter, exists = m.counters[name]; !exists {
			var err error
			counter, err = m.meter.Int64Counter(name)
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("failed to create counter %s: %w", name, err)
			}
			m.counters[name] = counter
		}
		m.mu.Unlock()
	}

	counter.Add(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

// RecordDuration records an operation duration in milliseconds.
func (m *Instruments) RecordDuration(ctx context.Context, name string, d time.Duration, attrs ...attribute.KeyValue) error {
	m.mu.RLock()
	hist, exists := m.histograms[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		if hist, exists = m.histograms[name]; !exists {
			var err error
			hist, err = m.meter.Float64Histogram(name, metric.WithUnit("ms"))
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("failed to create histogram %s: %w", name, err)
			}
			m.histograms[name] = hist
		}
		m.mu.Unlock()
	}

	hist.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	return nil
}

// Time starts a timer for the named operation; the returned func records the
// elapsed duration when called. Mirrors the start/stop sampling style the
// service uses around every store-touching operation.
func (m *Instruments) Time(ctx context.Context, name string, attrs ...attribute.KeyValue) func() {
	start := time.Now()
	return func() {
		_ = m.RecordDuration(ctx, name, time.Since(start), attrs...)
	}
}
