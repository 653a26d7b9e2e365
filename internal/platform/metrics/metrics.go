// Package metrics owns the Prometheus collectors of the service.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "internship"

// Metrics groups every collector the service exports.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	InFlight      prometheus.Gauge
	LoginAttempts *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec
	Uploads       *prometheus.CounterVec
}

// register registers c, reusing an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return c, err
	}
	return c, nil
}

// New creates and registers the collectors. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var (
		m   Metrics
		err error
	)

	if m.Requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, fmt.Errorf("register requests collector: %w", err)
	}

	if m.Duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})); err != nil {
		return nil, fmt.Errorf("register duration collector: %w", err)
	}

	if m.InFlight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})); err != nil {
		return nil, fmt.Errorf("register inflight collector: %w", err)
	}

	if m.LoginAttempts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, fmt.Errorf("register login collector: %w", err)
	}

	if m.Registrations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "registrations_total",
		Help:      "Successful registrations partitioned by role.",
	}, []string{"role"})); err != nil {
		return nil, fmt.Errorf("register registrations collector: %w", err)
	}

	if m.RateLimited, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter partitioned by rule.",
	}, []string{"rule"})); err != nil {
		return nil, fmt.Errorf("register rate limit collector: %w", err)
	}

	if m.Uploads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "files_total",
		Help:      "Uploaded files partitioned by field and outcome (stored, rejected, removed).",
	}, []string{"field", "outcome"})); err != nil {
		return nil, fmt.Errorf("register upload collector: %w", err)
	}

	return &m, nil
}

// ObserveLogin records a login outcome. Safe on a nil receiver.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveRegistration records a successful registration. Safe on a nil receiver.
func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role).Inc()
}

// ObserveRateLimited records a rejected request. Safe on a nil receiver.
func (m *Metrics) ObserveRateLimited(rule string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(rule).Inc()
}

// ObserveUpload records what happened to an uploaded file. Safe on a nil receiver.
func (m *Metrics) ObserveUpload(field, outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(field, outcome).Inc()
}
