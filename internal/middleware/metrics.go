// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

// Metrics records request counts and latency labelled by chi route pattern,
// so path parameters do not explode label cardinality.
func Metrics(m *core.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			route := routePattern(r)
			m.HTTPRequestsTotal.
				WithLabelValues(r.Method, route, strconv.Itoa(rec.statusCode())).
				Inc()
			m.HTTPRequestDuration.
				WithLabelValues(r.Method, route).
				Observe(time.Since(start).Seconds())
		})
	}
}
