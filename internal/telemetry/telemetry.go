// Package telemetry exports Prometheus metrics for the dashboard server.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesdash"

// Metrics holds all dashboard Prometheus metrics
type Metrics struct {
	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Aggregation metrics
	AggregationDuration *prometheus.HistogramVec
	RecordsScanned      *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec

	// Copy generation metrics
	CopyGenerations *prometheus.CounterVec
	HistoryBatches  *prometheus.CounterVec
}

// Provider owns a private registry so several providers can coexist in
// one process (tests, CLI commands).
type Provider struct {
	Registry *prometheus.Registry
	Metrics  *Metrics
}

// NewProvider registers every metric plus the Go runtime and process
// collectors on a fresh registry.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Registry: reg,
		Metrics:  initMetrics(promauto.With(reg)),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{Registry: p.Registry})
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}

	m.CacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Response cache lookups by cache and result (hit, miss)",
	}, []string{"cache", "result"})

	m.AggregationDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Time to fetch and aggregate records for one dashboard view",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	m.RecordsScanned = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_scanned_total",
		Help:      "Property records read from the store per aggregation",
	}, []string{"operation"})

	m.RequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	m.CopyGenerations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "copy_generations_total",
		Help:      "Sales copy generation attempts by model and result",
	}, []string{"model", "result"})

	m.HistoryBatches = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_batches_total",
		Help:      "Copy history batches written by result",
	}, []string{"result"})

	return m
}

// Hit and Miss let a Provider observe the response caches.
func (p *Provider) Hit(cache string) {
	p.Metrics.CacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (p *Provider) Miss(cache string) {
	p.Metrics.CacheLookups.WithLabelValues(cache, "miss").Inc()
}

// ObserveAggregation records one computed (uncached) dashboard view.
func (p *Provider) ObserveAggregation(operation string, d time.Duration, records int) {
	p.Metrics.AggregationDuration.WithLabelValues(operation).Observe(d.Seconds())
	p.Metrics.RecordsScanned.WithLabelValues(operation).Add(float64(records))
}

func (p *Provider) ObserveRequest(method, route string, status int, d time.Duration) {
	p.Metrics.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *Provider) RecordCopyGeneration(model string, ok bool) {
	p.Metrics.CopyGenerations.WithLabelValues(model, result(ok)).Inc()
}

func (p *Provider) RecordHistoryBatch(ok bool) {
	p.Metrics.HistoryBatches.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
