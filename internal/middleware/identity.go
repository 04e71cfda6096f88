package middleware

// identity.go stores and reads the signed-in user on the echo context.
// LoadSession writes it; handlers and the rate limiter read it.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/service"
)

const (
	userKey      = "user"
	sessionIDKey = "session_id"
)

func setIdentity(c echo.Context, id *service.Identity) {
	u := id.User
	c.Set(userKey, &u)
	c.Set(sessionIDKey, id.SessionID)
}

// CurrentUser returns the signed-in user, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// UserID returns the signed-in user's id, or 0 for guests.
func UserID(c echo.Context) uint64 {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}
	return 0
}

// SessionID returns the id of the current session, or "".
func SessionID(c echo.Context) string {
	s, _ := c.Get(sessionIDKey).(string)
	return s
}

// userKeyPart identifies the caller in rate limit keys; "anon" for guests.
func userKeyPart(c echo.Context) string {
	if id := UserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
