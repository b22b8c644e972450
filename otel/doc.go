// Package otel provides OpenTelemetry integration for catena cache metrics.
//
// # Overview
//
// This package implements catena.MetricsCollector using OpenTelemetry,
// enabling observability with automatic percentile calculation and
// multi-backend export (Prometheus, Jaeger, DataDog, any OTEL-compatible
// backend).
//
// The package is a separate module so the catena core stays free of OTEL
// dependencies; applications that don't configure a MetricsCollector don't
// pay for them.
//
// # Installation
//
//	go get github.com/catena-cache/catena/otel
//
// # Quick Start
//
//	import (
//	    "github.com/catena-cache/catena"
//	    catenaotel "github.com/catena-cache/catena/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := catenaotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, _ := catena.NewCache[string, User](catena.Config[string, User]{
//	    MaximumSize:      10_000,
//	    MetricsCollector: collector,
//	})
//
//	cache.Put("key", value)
//	cache.Get("key")
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - catena_get_latency_ns
//   - catena_set_latency_ns
//   - catena_delete_latency_ns
//   - catena_load_latency_ns (tagged success=true/false)
//
// Counters:
//   - catena_get_hits_total
//   - catena_get_misses_total
//   - catena_evictions_total (weighted by entry weight)
//   - catena_expirations_total
//
// # Configuration
//
// Custom meter name, useful for distinguishing multiple cache instances:
//
//	collector, err := catenaotel.NewOTelMetricsCollector(
//	    provider,
//	    catenaotel.WithMeterName("myapp_user_cache"),
//	)
//
// Custom histogram buckets for better percentile accuracy:
//
//	provider := metric.NewMeterProvider(
//	    metric.WithReader(exporter),
//	    metric.WithView(metric.NewView(
//	        metric.Instrument{Name: "catena_get_latency_ns"},
//	        metric.Stream{
//	            Aggregation: metric.AggregationExplicitBucketHistogram{
//	                Boundaries: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
//	            },
//	        },
//	    )),
//	)
//
// # Prometheus Queries
//
// P95 latency over 5 minutes:
//
//	histogram_quantile(0.95, rate(catena_get_latency_ns_bucket[5m]))
//
// Hit ratio:
//
//	rate(catena_get_hits_total[5m]) /
//	(rate(catena_get_hits_total[5m]) + rate(catena_get_misses_total[5m]))
//
// Evictions per minute:
//
//	rate(catena_evictions_total[1m]) * 60
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│      catena Cache (Core Module)     │
//	│  • No OTEL dependencies             │
//	│  • MetricsCollector interface       │
//	│  • NoOpMetricsCollector (default)   │
//	└──────────────┬──────────────────────┘
//	               │ implements
//	               ▼
//	┌─────────────────────────────────────┐
//	│    catena/otel (This Package)       │
//	│  • OTelMetricsCollector             │
//	│  • Histograms + Counters            │
//	└──────────────┬──────────────────────┘
//	               │ exports to
//	               ▼
//	┌─────────────────────────────────────┐
//	│      OTEL MeterProvider             │
//	└──────────────┬──────────────────────┘
//	     ┌─────────┴──────┬────────┐
//	     ▼                ▼        ▼
//	Prometheus        Jaeger   DataDog
//
// # Examples
//
// The Quick Start above shows the cache + exporter wiring; the repository
// ships no separate runnable example program.
//
// # License
//
// Same as the catena core (see LICENSE in the main repository).
package otel
