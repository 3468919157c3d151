package loggingmw

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/logging"
)

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)

			l := base.With(
				"method", c.Request().Method,
				"path", c.Path(),
				"url", c.Request().URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
			}

			req := c.Request().WithContext(logging.IntoContext(c.Request().Context(), l))
			c.SetRequest(req)

			start := time.Now()
			err := next(c)
			dur := time.Since(start)
			status := c.Response().Status

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
				status = c.Response().Status
			}

			switch {
			case err != nil || status >= 500:
				l.Error("request completed", "status", status, "duration_ms", dur.Milliseconds(), "error", errStr(err))
			case status >= 400:
				l.Warn("request completed", "status", status, "duration_ms", dur.Milliseconds())
			default:
				l.Info("request completed", "status", status, "duration_ms", dur.Milliseconds(), "bytes", c.Response().Size)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
