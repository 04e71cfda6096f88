package middleware // package middleware holds the echo middleware shared by all routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/service"
	"github.com/bbmitchh/Logmypour2/internal/utils"
)

// SessionCookieName holds the signed session token.
const SessionCookieName = "lmp_session"

// LoginRequiredMessage is flashed when a guest opens a protected page.
const LoginRequiredMessage = "Please log in to access this page."

// SessionResolver turns a cookie value into the signed-in user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, raw string) (*service.Identity, error)
}

// SessionCookies writes and clears the session cookie.
type SessionCookies struct {
	Secure bool
}

// Set stores tok as a persistent HttpOnly cookie expiring with the token.
func (s SessionCookies) Set(c echo.Context, tok utils.SessionToken) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (s SessionCookies) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadSession attaches the signed-in user to the context when the request
// carries a valid session cookie. An invalid cookie is cleared and the
// request continues as a guest; lookup failures are logged and also
// treated as a guest.
func LoadSession(res SessionResolver, cookies SessionCookies, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			id, err := res.ResolveSession(ctx, cookie.Value)
			cancel()
			if err != nil {
				if !errors.Is(err, utils.ErrInvalidSession) {
					log.Error("resolve session failed", zap.Error(err))
				}
				cookies.Clear(c)
				return next(c)
			}

			setIdentity(c, id)
			return next(c)
		}
	}
}

// RequireSession sends guests to the login page with a notice.
func RequireSession(flashes flash.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				flashes.Add(c, flash.KindError, LoginRequiredMessage)
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}
