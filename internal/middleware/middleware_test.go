// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/config"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type stubResolver struct {
	principals map[string]*access.Principal
	err        error
}

func (s stubResolver) Authenticate(
	_ context.Context,
	token string,
) (*access.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.principals[token], nil
}

var resolver = stubResolver{principals: map[string]*access.Principal{
	"admin-token":   {UserID: "a1", Email: "admin@example.com", Role: access.RoleAdmin},
	"student-token": {UserID: "s1", Email: "student@example.com", Role: access.RoleStudent},
}}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	if p := GetPrincipal(r.Context()); p != nil {
		_, _ = io.WriteString(w, p.UserID)
		return
	}
	_, _ = io.WriteString(w, "anonymous")
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(resolver)(http.HandlerFunc(echoPrincipal))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "unknown").Code)

	rec := serve(h, "student-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", rec.Body.String())

	failing := Authenticator(stubResolver{err: errors.New("db down")})(
		http.HandlerFunc(echoPrincipal),
	)
	assert.Equal(t, http.StatusInternalServerError, serve(failing, "x").Code)
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(resolver)(http.HandlerFunc(echoPrincipal))

	assert.Equal(t, "anonymous", serve(h, "").Body.String())
	assert.Equal(t, "anonymous", serve(h, "unknown").Body.String())
	assert.Equal(t, "a1", serve(h, "admin-token").Body.String())
}

func TestRequireRole(t *testing.T) {
	h := Authenticator(resolver)(RequireAdmin(http.HandlerFunc(echoPrincipal)))

	assert.Equal(t, http.StatusOK, serve(h, "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "student-token").Code)

	creator := Authenticator(resolver)(RequireCreator(http.HandlerFunc(echoPrincipal)))
	assert.Equal(t, http.StatusOK, serve(creator, "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(creator, "student-token").Code)

	bare := RequireAdmin(http.HandlerFunc(echoPrincipal))
	assert.Equal(t, http.StatusUnauthorized, serve(bare, "").Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "bearer   tok ")
	assert.Equal(t, "tok", ExtractToken(req))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Get("/courses/{courseID}", func(w http.ResponseWriter, r *http.Request) {
		core.NotFound(w, "course")
	})

	req := httptest.NewRequest(http.MethodGet, "/courses/abc", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"route":"/courses/{courseID}"`)
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           60,
	})(http.HandlerFunc(echoPrincipal))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	foreign := httptest.NewRequest(http.MethodGet, "/", nil)
	foreign.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, foreign)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeaders(true)(http.HandlerFunc(echoPrincipal)), "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = serve(SecurityHeaders(false)(http.HandlerFunc(echoPrincipal)), "")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := core.NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/lessons/{lessonID}", func(w http.ResponseWriter, r *http.Request) {
		core.OK(w, nil)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/lessons/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/lessons/{lessonID}", "200"),
	)
	require.InDelta(t, 3, count, 0)
}

func TestTracingRecordsServerErrors(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		core.InternalServerError(w, errors.New("kaput"))
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		core.OK(w, nil)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "http.request", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
