package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/internal/observability"
	apierrors "github.com/hrygo/musclequiz/server/internal/errors"
)

// HTTPErrorHandler renders every error as {"code","message"}.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *apierrors.APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			apiErr = fromHTTPError(httpErr)
		default:
			apiErr = apierrors.FromError(err)
		}

		log := observability.LoggerFromContext(c.Request().Context(), logger)
		if apiErr.Code == apierrors.ErrCodeInternal {
			log.Error("request failed", slog.String("error", err.Error()))
		} else {
			log.Debug("request rejected",
				slog.String(observability.LogFieldErrorCode, string(apiErr.Code)),
				slog.String("error", err.Error()),
			)
		}

		status := apiErr.Code.HTTPStatus()
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, apiErr)
		}
		if err != nil {
			log.Warn("failed to write error response", slog.String("error", err.Error()))
		}
	}
}

func fromHTTPError(httpErr *echo.HTTPError) *apierrors.APIError {
	msg := http.StatusText(httpErr.Code)
	switch httpErr.Code {
	case http.StatusNotFound:
		return apierrors.Wrap(httpErr, apierrors.ErrCodeNotFound, msg)
	case http.StatusTooManyRequests:
		return apierrors.Wrap(httpErr, apierrors.ErrCodeRateLimitExceeded, msg)
	case http.StatusInternalServerError:
		return apierrors.Wrap(httpErr, apierrors.ErrCodeInternal, "internal error")
	}
	if httpErr.Code >= 400 && httpErr.Code < 500 {
		return apierrors.Wrap(httpErr, apierrors.ErrCodeInvalidArgument, msg)
	}
	return apierrors.Wrap(httpErr, apierrors.ErrCodeInternal, "internal error")
}
