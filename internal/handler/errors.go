package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
)

type errorView struct {
	Code    int
	Message string
}

// ErrorHandler renders failures through the error page. Server errors are
// logged with their cause; the page only shows a generic message.
func ErrorHandler(log *zap.Logger, flashes flash.Store) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Something went wrong. Please try again."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
				message = m
			} else if code < http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if rerr := render(c, flashes, code, "error", http.StatusText(code), errorView{Code: code, Message: message}); rerr != nil {
			log.Warn("render error page failed", zap.Error(rerr))
			_ = c.String(code, message)
		}
	}
}
