package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orb_api_requests_total",
		Help: "HTTP requests served, by method and path template.",
	}, []string{"method", "path"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orb_api_request_duration_seconds",
		Help:    "HTTP request latency, by path template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	backtestsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orb_backtests_started_total",
		Help: "Backtest runs submitted through the API.",
	})

	backtestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orb_backtest_duration_seconds",
		Help:    "Wall-clock duration of completed backtest runs.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	activeTickStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orb_tick_streams_active",
		Help: "Open WebSocket tick streams.",
	})
)

// instrument records request counts and latency per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		requestsTotal.WithLabelValues(r.Method, path).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
