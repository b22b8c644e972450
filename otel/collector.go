// Package otel provides OpenTelemetry integration for catena cache metrics.
//
// It implements catena.MetricsCollector over OpenTelemetry instruments,
// giving automatic percentile calculation (p50, p95, p99) and multi-backend
// export (Prometheus, Jaeger, DataDog, Grafana) without any OTEL dependency
// in the core catena module.
//
// # Usage
//
//	import (
//	    "github.com/catena-cache/catena"
//	    catenaotel "github.com/catena-cache/catena/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//
//	collector, _ := catenaotel.NewOTelMetricsCollector(provider)
//
//	cache, _ := catena.NewCache[string, string](catena.Config[string, string]{
//	    MaximumSize:      10000,
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - catena_get_latency_ns: histogram of Get latencies
//   - catena_set_latency_ns: histogram of Put latencies
//   - catena_delete_latency_ns: histogram of Remove latencies
//   - catena_load_latency_ns: histogram of Loader latencies, tagged success/failure
//   - catena_get_hits_total / catena_get_misses_total: hit/miss counters
//   - catena_evictions_total: counter of size/weight evictions, weighted by entry weight
//   - catena_expirations_total: counter of TTL-based expirations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/catena-cache/catena"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements catena.MetricsCollector using
// OpenTelemetry. Safe for concurrent use; every OTEL instrument it wraps
// is itself lock-free.
type OTelMetricsCollector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	loadLatency   metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	expirations   metric.Int64Counter
}

// Options configures an OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/catena-cache/catena"
	MeterName string
}

// Option is a functional option for Options.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful when distinguishing
// metrics from multiple cache instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates the OTEL instruments backing a
// catena.MetricsCollector and returns the collector wrapping them.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/catena-cache/catena"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	collector := &OTelMetricsCollector{}

	var err error
	collector.getLatency, err = meter.Int64Histogram(
		"catena_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.setLatency, err = meter.Int64Histogram(
		"catena_set_latency_ns",
		metric.WithDescription("Latency of Put operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.deleteLatency, err = meter.Int64Histogram(
		"catena_delete_latency_ns",
		metric.WithDescription("Latency of Remove operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.loadLatency, err = meter.Int64Histogram(
		"catena_load_latency_ns",
		metric.WithDescription("Latency of Loader invocations in nanoseconds, tagged by outcome"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.hits, err = meter.Int64Counter(
		"catena_get_hits_total",
		metric.WithDescription("Total number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	collector.misses, err = meter.Int64Counter(
		"catena_get_misses_total",
		metric.WithDescription("Total number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	collector.evictions, err = meter.Int64Counter(
		"catena_evictions_total",
		metric.WithDescription("Total weight evicted to satisfy a maximumSize/maximumWeight bound"),
	)
	if err != nil {
		return nil, err
	}

	collector.expirations, err = meter.Int64Counter(
		"catena_expirations_total",
		metric.WithDescription("Total number of TTL-based expirations"),
	)
	if err != nil {
		return nil, err
	}

	return collector, nil
}

// RecordGet records a Get operation's latency and hit/miss outcome.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordSet records a Put operation's latency.
func (c *OTelMetricsCollector) RecordSet(latencyNs int64) {
	c.setLatency.Record(context.Background(), latencyNs)
}

// RecordDelete records a Remove operation's latency.
func (c *OTelMetricsCollector) RecordDelete(latencyNs int64) {
	c.deleteLatency.Record(context.Background(), latencyNs)
}

// RecordEviction records an entry evicted to satisfy a size/weight bound.
func (c *OTelMetricsCollector) RecordEviction(weight int) {
	c.evictions.Add(context.Background(), int64(weight))
}

// RecordExpiration records a TTL-based expiration event.
func (c *OTelMetricsCollector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

// RecordLoadSuccess records a successful Loader invocation's latency.
func (c *OTelMetricsCollector) RecordLoadSuccess(latencyNs int64) {
	c.loadLatency.Record(context.Background(), latencyNs, metric.WithAttributes(attribute.Bool("success", true)))
}

// RecordLoadFailure records a failed Loader invocation's latency.
func (c *OTelMetricsCollector) RecordLoadFailure(latencyNs int64) {
	c.loadLatency.Record(context.Background(), latencyNs, metric.WithAttributes(attribute.Bool("success", false)))
}

var _ catena.MetricsCollector = (*OTelMetricsCollector)(nil)
