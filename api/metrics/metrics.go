package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo exposes the build version as a constant gauge.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "signalscope_build_info",
		Help: "Build information for the signalscope API",
	}, []string{"version", "commit", "date"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalscope_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signalscope_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	clickhouseQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalscope_clickhouse_queries_total",
		Help: "Total ClickHouse queries by outcome",
	}, []string{"status"})

	clickhouseQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signalscope_clickhouse_query_duration_seconds",
		Help:    "ClickHouse query latency",
		Buckets: prometheus.DefBuckets,
	})

	postgresQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalscope_postgres_queries_total",
		Help: "Total Postgres queries by outcome",
	}, []string{"status"})

	postgresQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signalscope_postgres_query_duration_seconds",
		Help:    "Postgres query latency",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordClickHouseQuery records the duration and outcome of a ClickHouse query.
func RecordClickHouseQuery(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	clickhouseQueriesTotal.WithLabelValues(status).Inc()
	clickhouseQueryDuration.Observe(d.Seconds())
}

// RecordPostgresQuery records the duration and outcome of a Postgres query.
func RecordPostgresQuery(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	postgresQueriesTotal.WithLabelValues(status).Inc()
	postgresQueryDuration.Observe(d.Seconds())
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies labeled by the chi route
// pattern, so path parameters do not explode metric cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
