// Package metrics owns the prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostel"

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RegistrationsSubmitted prometheus.Counter
	RegistrationsCompleted *prometheus.CounterVec
	RegistrationsExpired   prometheus.Counter
	InvoicesGenerated      prometheus.Counter
	InvoiceFailures        prometheus.Counter
	InvoiceDownloads       prometheus.Counter
	LoginAttempts          *prometheus.CounterVec

	registry prometheus.Registerer
	gatherer prometheus.Gatherer
}

// New builds the collectors. Pass nil to use the process-wide default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RegistrationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "submitted_total",
			Help:      "Temporary registrations created",
		}),
		RegistrationsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "completed_total",
			Help:      "Registrations promoted to a permanent account, by pool",
		}, []string{"pool"}),
		RegistrationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "expired_total",
			Help:      "Expired temporary registrations removed by the sweeper",
		}),
		InvoicesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invoice",
			Name:      "generated_total",
			Help:      "Invoices generated",
		}),
		InvoiceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invoice",
			Name:      "failures_total",
			Help:      "Invoice generation failures during promotion",
		}),
		InvoiceDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invoice",
			Name:      "downloads_total",
			Help:      "Invoice document downloads",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
	}

	if reg != nil {
		m.registry, m.gatherer = reg, reg
	} else {
		m.registry, m.gatherer = prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	}
	return m
}

// Register adds every collector to the registry chosen in New.
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsSubmitted,
		m.RegistrationsCompleted,
		m.RegistrationsExpired,
		m.InvoicesGenerated,
		m.InvoiceFailures,
		m.InvoiceDownloads,
		m.LoginAttempts,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the chi route pattern,
// keeping label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Nil-safe helpers so services can run without metrics in tests.

func (m *Metrics) IncSubmitted() {
	if m != nil {
		m.RegistrationsSubmitted.Inc()
	}
}

func (m *Metrics) IncCompleted(pool string) {
	if m != nil {
		m.RegistrationsCompleted.WithLabelValues(pool).Inc()
	}
}

func (m *Metrics) AddExpired(n int64) {
	if m != nil && n > 0 {
		m.RegistrationsExpired.Add(float64(n))
	}
}

func (m *Metrics) IncInvoiceGenerated() {
	if m != nil {
		m.InvoicesGenerated.Inc()
	}
}

func (m *Metrics) IncInvoiceFailure() {
	if m != nil {
		m.InvoiceFailures.Inc()
	}
}

func (m *Metrics) IncInvoiceDownload() {
	if m != nil {
		m.InvoiceDownloads.Inc()
	}
}

func (m *Metrics) IncLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
