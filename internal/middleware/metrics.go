// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thediveo/spashell"
)

// Metrics bundles the Prometheus collectors of the server.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	Resolutions        *prometheus.CounterVec
	RateLimitDropped   prometheus.Counter
}

// NewMetrics returns new metrics, registered with the specified registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spashell_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spashell_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spashell_asset_resolutions_total",
			Help: "Total number of SPA asset resolutions by outcome.",
		}, []string{"outcome"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spashell_ratelimit_dropped_total",
			Help: "Total number of requests dropped by the rate limiter.",
		}),
	}
	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.Resolutions,
		m.RateLimitDropped,
	)
	return m
}

// ObserveResolution counts an SPA asset resolution outcome; it is meant to be
// passed to spashell.WithObserver.
func (m *Metrics) ObserveResolution(outcome spashell.Outcome) {
	m.Resolutions.WithLabelValues(outcome.String()).Inc()
}

// Middleware counts and times requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := newStatusRecorder(w)

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := normalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

// normalizeRoute keeps the route label cardinality bounded, as SPA paths are
// arbitrary.
func normalizeRoute(path string) string {
	switch {
	case path == "/metrics":
		return "/metrics"
	case path == "/api" || strings.HasPrefix(path, "/api/"):
		return "/api/*"
	default:
		return "spa"
	}
}
