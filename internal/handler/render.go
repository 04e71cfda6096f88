package handler // package handler holds the HTTP handlers for the HTML pages

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
	"github.com/bbmitchh/Logmypour2/internal/view"
)

// requestTimeout bounds the storage work of one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// render writes a full page, consuming any pending flashes.
func render(c echo.Context, flashes flash.Store, status int, name, title string, data any) error {
	return c.Render(status, name, newPage(c, flashes, title, data))
}

func newPage(c echo.Context, flashes flash.Store, title string, data any) view.Page {
	u, _ := middleware.CurrentUser(c)
	csrf, _ := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
	return view.Page{
		Title:   title,
		User:    u,
		Flashes: flashes.Pop(c),
		CSRF:    csrf,
		Data:    data,
	}
}

// redirectWith flashes a notice and sends the browser to target with a
// 303 so the follow-up request is a GET.
func redirectWith(c echo.Context, flashes flash.Store, kind flash.Kind, message, target string) error {
	flashes.Add(c, kind, message)
	return c.Redirect(http.StatusSeeOther, target)
}

// pathID parses the :id route parameter. Anything but a positive integer
// is a 404.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}
