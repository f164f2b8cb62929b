// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/config"
	"github.com/carterperez-dev/templates/course-backend/internal/health"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestRecoversFromPanics(t *testing.T) {
	srv := New(Config{
		ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownMarksHealthUnavailable(t *testing.T) {
	h := health.NewHandler(okPinger{}, nil)
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		HealthHandler: h,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.RegisterRoutes(srv.Router())

	require.NoError(t, srv.Shutdown(context.Background(), 0))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
