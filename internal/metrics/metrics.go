// Package metrics exposes Prometheus counters for HTTP traffic and tasting
// activity on a registry owned by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's collectors. A nil *Metrics records
// nothing, so callers need no guards.
//
// Metrics:
//   - logmypour_http_requests_total{method,route,status}
//   - logmypour_http_request_duration_seconds{method,route}
//   - logmypour_tasting_writes_total{action}
//   - logmypour_logins_total{outcome}
//   - logmypour_signups_total{outcome}
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	tastingWrites *prometheus.CounterVec
	logins        *prometheus.CounterVec
	signups       *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logmypour_http_requests_total",
			Help: "HTTP requests handled, by route and status",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logmypour_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tastingWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logmypour_tasting_writes_total",
			Help: "Tastings created, updated or deleted",
		}, []string{"action"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logmypour_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		signups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logmypour_signups_total",
			Help: "Signup attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts and times every request by its route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// TastingWrite records a created, updated or deleted tasting.
func (m *Metrics) TastingWrite(action string) {
	if m == nil {
		return
	}
	m.tastingWrites.WithLabelValues(action).Inc()
}

// Login records a login attempt outcome such as "ok" or "invalid".
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Signup records a signup attempt outcome.
func (m *Metrics) Signup(outcome string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(outcome).Inc()
}
