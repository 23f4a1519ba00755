// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered on an injected [prometheus.Registerer] so tests
// can use a private registry instead of the process-wide default.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kinora"

// Metrics holds all the application collectors.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogMutationTotal *prometheus.CounterVec
	CatalogSize          prometheus.Gauge
	QueryDuration        prometheus.Histogram

	// Collaborator metrics
	PersistTotal      *prometheus.CounterVec
	PersistDuration   prometheus.Histogram
	EventPublishTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on registerer.
// A collector that is already registered is reused.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		CatalogMutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_changes_total",
			Help:      "Total number of published catalog changes by kind",
		}, []string{"kind"}),

		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_movies",
			Help:      "Number of movies currently held by the catalog",
		}),

		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_duration_seconds",
			Help:      "Duration of the search, filter and sort pipeline",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),

		PersistTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_persist_total",
			Help:      "Total number of snapshot saves by outcome",
		}, []string{"status"}),

		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_persist_duration_seconds",
			Help:      "Snapshot save duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		EventPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Total number of change events published by type and outcome",
		}, []string{"event_type", "status"}),
	}

	m.HTTPRequestTotal = registerOrGet(registerer, m.HTTPRequestTotal)
	m.HTTPRequestDuration = registerOrGet(registerer, m.HTTPRequestDuration)
	m.CatalogMutationTotal = registerOrGet(registerer, m.CatalogMutationTotal)
	m.CatalogSize = registerOrGet(registerer, m.CatalogSize)
	m.QueryDuration = registerOrGet(registerer, m.QueryDuration)
	m.PersistTotal = registerOrGet(registerer, m.PersistTotal)
	m.PersistDuration = registerOrGet(registerer, m.PersistDuration)
	m.EventPublishTotal = registerOrGet(registerer, m.EventPublishTotal)

	return m
}

// registerOrGet registers c, returning the existing collector if one with
// the same descriptor is already registered.
func registerOrGet[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// # Observers

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveChange records a published catalog change and the resulting size.
func (m *Metrics) ObserveChange(kind string, size int) {
	m.CatalogMutationTotal.WithLabelValues(kind).Inc()
	m.CatalogSize.Set(float64(size))
}

// ObserveQuery records one run of the query pipeline.
func (m *Metrics) ObserveQuery(duration time.Duration) {
	m.QueryDuration.Observe(duration.Seconds())
}

// ObservePersist records one snapshot save.
func (m *Metrics) ObservePersist(err error, duration time.Duration) {
	m.PersistTotal.WithLabelValues(outcome(err)).Inc()
	m.PersistDuration.Observe(duration.Seconds())
}

// ObservePublish records one change-event publish.
func (m *Metrics) ObservePublish(eventType string, err error) {
	m.EventPublishTotal.WithLabelValues(eventType, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
