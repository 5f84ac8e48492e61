package middleware

import (
	"net/http"
	"time"

	"github.com/watchcrew/watchcrew-backend/pkg/metrics"
)

// Metrics records request counts, latency, and in-flight gauges per route.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpMetrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			httpMetrics.IncInFlight()
			defer httpMetrics.DecInFlight()

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			httpMetrics.ObserveRequest(r.Method, routePattern(r), rec.status, time.Since(start))
		})
	}
}
