// AngelaMos | 2026
// tracing.go

package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

// Tracing opens one span per request. 5xx responses mark the span failed.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, finish := core.StartSpan(r.Context(), "http.request",
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.statusCode()
		core.AddSpanEvent(ctx, "response",
			attribute.String("http.route", routePattern(r)),
			attribute.Int("http.status_code", status),
		)

		var err error
		if status >= http.StatusInternalServerError {
			err = fmt.Errorf("http status %d", status)
		}
		finish(err)
	})
}
