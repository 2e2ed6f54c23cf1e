package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campaign_service",
			Name:      "http_requests_total",
			Help:      "Tenant API requests by route and outcome.",
		},
		[]string{"method", "route", "tenant_id", "outcome"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campaign_service",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of tenant API requests.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "outcome"},
	)
)

// Request outcomes used as metric labels.
const (
	OutcomeOK        = "ok"
	OutcomeDenied    = "denied"
	OutcomeThrottled = "throttled"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

func requestOutcome(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return OutcomeDenied
	case status == http.StatusTooManyRequests:
		return OutcomeThrottled
	case status >= 500:
		return OutcomeFailed
	case status >= 400:
		return OutcomeRejected
	default:
		return OutcomeOK
	}
}

// PrometheusMetricsMiddleware records request counts and latency labelled by
// chi route pattern, tenant and outcome.
func PrometheusMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route, tenant := "unknown", "none"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
			if id, err := uuid.Parse(rctx.URLParam(TenantIDParam)); err == nil {
				tenant = id.String()
			}
		}

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		outcome := requestOutcome(statusCode)

		httpRequestDurationSeconds.WithLabelValues(r.Method, route, outcome).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, tenant, outcome).Inc()
	})
}
