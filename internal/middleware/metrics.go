// File: internal/middleware/metrics.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-counselor/internal/metrics"
)

// Metrics records request counts and latency by route template.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		path := routeTemplate(r)
		status := strconv.Itoa(rec.status)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())

		if rec.status >= 500 {
			metrics.ErrorsTotal.WithLabelValues("server_error").Inc()
		} else if rec.status >= 400 {
			metrics.ErrorsTotal.WithLabelValues("client_error").Inc()
		}
	})
}

// routeTemplate keeps label cardinality bounded by using the matched route pattern.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
