// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus instruments shared by the BFF.

All recording methods are nil-safe so components can be constructed without
metrics in tests and in the CLI.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courtside"

// Metrics holds every registered instrument.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP (inbound)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream (outbound to the primary and identity services)
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	IdentityReloginsTotal   prometheus.Counter

	// Session and reconciliation
	SessionTransitionsTotal *prometheus.CounterVec
	SagasTotal              *prometheus.CounterVec

	// Person enrichment cache
	PersonCacheTotal *prometheus.CounterVec
}

// New creates and registers all instruments on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of inbound HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Inbound HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of calls to upstream services",
			},
			[]string{"service", "method", "status"},
		),
		UpstreamRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		IdentityReloginsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_relogins_total",
				Help:      "Service-account re-logins triggered by a 401 from the identity service",
			},
		),
		SessionTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Session state transitions by kind",
			},
			[]string{"kind"},
		),
		SagasTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_sagas_total",
				Help:      "Finished reconciliation sagas by profile kind and final state",
			},
			[]string{"kind", "state"},
		),
		PersonCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "person_cache_lookups_total",
				Help:      "Person enrichment cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.IdentityReloginsTotal,
		m.SessionTransitionsTotal,
		m.SagasTotal,
		m.PersonCacheTotal,
	)

	return m
}

// Registry returns the underlying registry (used by tests to gather).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// # Recording helpers

// ObserveUpstream records one upstream call. status 0 means no response.
func (m *Metrics) ObserveUpstream(service, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "none"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequestsTotal.WithLabelValues(service, method, label).Inc()
	m.UpstreamRequestDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// Relogin records a service-account re-login.
func (m *Metrics) Relogin() {
	if m == nil {
		return
	}
	m.IdentityReloginsTotal.Inc()
}

// SessionTransition records a session set/clear/reject.
func (m *Metrics) SessionTransition(kind string) {
	if m == nil {
		return
	}
	m.SessionTransitionsTotal.WithLabelValues(kind).Inc()
}

// SagaFinished records the final state of a reconciliation saga.
func (m *Metrics) SagaFinished(kind, state string) {
	if m == nil {
		return
	}
	m.SagasTotal.WithLabelValues(kind, state).Inc()
}

// PersonCache records a hit or a miss.
func (m *Metrics) PersonCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PersonCacheTotal.WithLabelValues(result).Inc()
}

// Middleware records inbound request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)

		next.ServeHTTP(wrapped, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(request.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}
