package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bbmitchh/Logmypour2/internal/handler"
)

// RegisterTastings registers the signed-in tasting pages. The guard is
// attached per route; a root-level group would also catch unknown paths.
func RegisterTastings(e *echo.Echo, h *handler.TastingHandler, requireSession echo.MiddlewareFunc) {
	e.GET("/dashboard", h.Dashboard, requireSession)
	e.GET("/submit_tasting", h.SubmitForm, requireSession)
	e.POST("/submit_tasting", h.Submit, requireSession)
	e.GET("/my_tastings", h.MyTastings, requireSession)
	e.GET("/edit_tasting/:id", h.EditForm, requireSession)
	e.POST("/edit_tasting/:id", h.Edit, requireSession)
	e.POST("/delete_tasting/:id", h.Delete, requireSession)
}
