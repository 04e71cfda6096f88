package router // package router wires middleware and routes onto the echo instance

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/handler"
	"github.com/bbmitchh/Logmypour2/internal/metrics"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
)

// Deps is everything New needs. Metrics may be nil.
type Deps struct {
	Log      *zap.Logger
	Renderer echo.Renderer
	Flash    flash.Store
	Cookies  middleware.SessionCookies
	Sessions middleware.SessionResolver
	Metrics  *metrics.Metrics
	DB       handler.Pinger

	Auth     *handler.AuthHandler
	Tastings *handler.TastingHandler

	// Throttle guards the login and signup posts.
	Throttle    echo.MiddlewareFunc
	CSRFEnabled bool
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log, d.Flash)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLog(d.Log))
	e.Use(d.Metrics.Middleware())
	e.Use(echomw.BodyLimit("64K"))
	e.Use(middleware.LoadSession(d.Sessions, d.Cookies, d.Log))
	if d.CSRFEnabled {
		e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			Skipper:        skipInfra,
			TokenLookup:    "form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   d.Cookies.Secure,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}

	throttle := d.Throttle
	if throttle == nil {
		throttle = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	RegisterRoutes(e, d.DB, d.Metrics)
	RegisterAuth(e, d.Auth, throttle, middleware.RequireSession(d.Flash))
	RegisterTastings(e, d.Tastings, middleware.RequireSession(d.Flash))
	return e
}

// skipInfra exempts the health and metrics endpoints from CSRF.
func skipInfra(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/healthz" || strings.HasPrefix(p, "/metrics")
}

// RegisterRoutes registers the unauthenticated infrastructure endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health(db))
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers the login, signup and logout pages. Only the form
// posts are throttled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, throttle, requireSession echo.MiddlewareFunc) {
	e.GET("/", a.LoginPage)
	e.POST("/", a.Login, throttle)
	e.GET("/signup", a.SignupPage)
	e.POST("/signup", a.Signup, throttle)
	e.GET("/logout", a.Logout, requireSession)
}
