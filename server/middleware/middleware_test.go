package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/musclequiz/internal/observability"
	apierrors "github.com/hrygo/musclequiz/server/internal/errors"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < DefaultBurst; i++ {
		require.True(t, rl.Allow("a"))
	}
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Clients())

	// Only 10.0.0.2 stays active.
	now = now.Add(DefaultIdleTTL / 2)
	rl.Allow("10.0.0.2")
	now = now.Add(DefaultIdleTTL / 2)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 1, rl.Clients())

	// An evicted client comes back with a fresh bucket.
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	handler := NewRateLimiter(1, 1).Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		return e.NewContext(req, httptest.NewRecorder())
	}

	require.NoError(t, handler(newCtx()))
	err := handler(newCtx())
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeRateLimitExceeded))
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	metrics := observability.NewMetrics(10)
	handler := RequestLogger(slog.Default(), metrics)(func(c echo.Context) error {
		reqCtx, ok := observability.FromContext(c.Request().Context())
		require.True(t, ok)
		seen = reqCtx.RequestID
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, int64(2), metrics.Snapshot().RequestTotal)
}
