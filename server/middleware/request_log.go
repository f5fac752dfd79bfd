package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/musclequiz/internal/observability"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger attaches a RequestContext to every request, logs its outcome
// and records it in metrics when metrics is not nil.
// An incoming X-Request-Id header is reused.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var reqCtx *observability.RequestContext
			if id := req.Header.Get(RequestIDHeader); id != "" {
				reqCtx = observability.NewRequestContextWithID(logger, id)
			} else {
				reqCtx = observability.NewRequestContext(logger)
			}
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(RequestIDHeader, reqCtx.RequestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			failed := c.Response().Status >= 500
			if metrics != nil {
				metrics.RecordRequest(c.Path(), reqCtx.Duration(), failed)
			}

			attrs := []slog.Attr{
				slog.String(observability.LogFieldMethod, req.Method),
				slog.String(observability.LogFieldPath, c.Path()),
				slog.Int(observability.LogFieldStatus, c.Response().Status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			if failed {
				reqCtx.Warn("request failed", attrs...)
			} else {
				reqCtx.Debug("request handled", attrs...)
			}
			return nil
		}
	}
}
