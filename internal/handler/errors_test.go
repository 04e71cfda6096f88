package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/view"
)

func TestErrorHandler(t *testing.T) {
	r, err := view.New()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.WarnLevel)

	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(zap.New(core), flash.Store{})
	e.Any("/boom", func(echo.Context) error { return errors.New("secret detail") })
	e.GET("/busy", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts.")
	})

	t.Run("server error is generic and logged", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret detail")
		require.Equal(t, 1, logs.FilterMessage("request failed").Len())
	})

	t.Run("client error shows its message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/busy", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Too many attempts.")
		assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>404</h1>")
	})

	t.Run("head has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(stubPinger{}))
	e.GET("/down", Health(stubPinger{err: errors.New("refused")}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
