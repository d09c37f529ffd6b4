// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Image transform outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
	OutcomeNotModified = "not_modified"
)

// Metrics groups the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ImageTransforms *prometheus.CounterVec
	ImageDuration   *prometheus.HistogramVec
	ImageThrottled  prometheus.Counter
	SlugResolutions *prometheus.CounterVec
	PoolRunning     prometheus.GaugeFunc
}

// New registers the collectors. poolRunning reports busy image workers and
// may be nil.
func New(poolRunning func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		ImageTransforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ocms",
			Subsystem: "image",
			Name:      "transforms_total",
			Help:      "Image transform requests by output format and outcome.",
		}, []string{"format", "outcome"}),
		ImageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ocms",
			Subsystem: "image",
			Name:      "transform_duration_seconds",
			Help:      "Time spent transforming images.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"format"}),
		ImageThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ocms",
			Subsystem: "image",
			Name:      "throttled_total",
			Help:      "Image requests rejected by the rate limiter.",
		}),
		SlugResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ocms",
			Subsystem: "localization",
			Name:      "slug_resolutions_total",
			Help:      "Slug lookups by locale and result.",
		}, []string{"locale", "result"}),
	}
	reg.MustRegister(m.ImageTransforms, m.ImageDuration, m.ImageThrottled, m.SlugResolutions)

	if poolRunning != nil {
		m.PoolRunning = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "ocms",
			Subsystem: "image",
			Name:      "workers_busy",
			Help:      "Image workers currently running a transform.",
		}, func() float64 { return float64(poolRunning()) })
		reg.MustRegister(m.PoolRunning)
	}

	return m
}

// ObserveTransform records one transform.
func (m *Metrics) ObserveTransform(format, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ImageTransforms.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeOK {
		m.ImageDuration.WithLabelValues(format).Observe(d.Seconds())
	}
}

// Throttled counts a throttled image request.
func (m *Metrics) Throttled(*http.Request) {
	if m == nil {
		return
	}
	m.ImageThrottled.Inc()
}

// ObserveSlug records a slug lookup; found is false for misses.
func (m *Metrics) ObserveSlug(locale string, found bool) {
	if m == nil {
		return
	}
	result := "found"
	if !found {
		result = "missing"
	}
	m.SlugResolutions.WithLabelValues(locale, result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
