package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/service"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

// Notices shown by the tasting pages.
const (
	msgSubmitted     = "Tasting submitted!"
	msgUpdated       = "Tasting updated!"
	msgDeleted       = "Tasting deleted!"
	msgCannotEdit    = "You cannot edit this tasting."
	msgCannotDelete  = "You cannot delete this tasting."
	msgStoreRequired = "Store name is required."
)

// TastingService is what the tasting pages need from service.Tastings.
type TastingService interface {
	Submit(ctx context.Context, userID uint64, in service.TastingInput) (model.Tasting, error)
	History(ctx context.Context, userID uint64) (service.History, error)
	Summary(ctx context.Context, userID uint64) (tasting.Cumulative, error)
	GetOwned(ctx context.Context, userID, id uint64) (model.Tasting, error)
	Edit(ctx context.Context, userID, id uint64, in service.TastingInput) (model.Tasting, error)
	Remove(ctx context.Context, userID, id uint64) error
}

// TastingHandler serves the signed-in pages. Every route it backs sits
// behind middleware.RequireSession.
type TastingHandler struct {
	Tastings TastingService
	Flash    flash.Store
	Log      *zap.Logger
	Loc      *time.Location
	Now      func() time.Time
}

func NewTastingHandler(tastings TastingService, flashes flash.Store, log *zap.Logger) *TastingHandler {
	return &TastingHandler{Tastings: tastings, Flash: flashes, Log: log, Loc: time.Local, Now: time.Now}
}

// Dashboard shows the cumulative summary.
func (h *TastingHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sum, err := h.Tastings.Summary(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return render(c, h.Flash, http.StatusOK, "dashboard", "Dashboard", sum)
}

// SubmitForm shows an empty tasting form dated now.
func (h *TastingHandler) SubmitForm(c echo.Context) error {
	return render(c, h.Flash, http.StatusOK, "tasting_form", "Submit a tasting", newFormView(h.now()))
}

// Submit stores a new tasting.
func (h *TastingHandler) Submit(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	in := decodeTastingForm(c, h.now(), h.Loc)
	if _, err := h.Tastings.Submit(ctx, middleware.UserID(c), in); err != nil {
		if errors.Is(err, service.ErrInvalidTasting) {
			return redirectWith(c, h.Flash, flash.KindError, msgStoreRequired, "/submit_tasting")
		}
		return err
	}
	return redirectWith(c, h.Flash, flash.KindSuccess, msgSubmitted, "/my_tastings")
}

// MyTastings lists the user's tastings with their summaries.
func (h *TastingHandler) MyTastings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	hist, err := h.Tastings.History(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}
	return render(c, h.Flash, http.StatusOK, "my_tastings", "My tastings", hist)
}

// EditForm shows the form prefilled from the stored tasting.
func (h *TastingHandler) EditForm(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := pathID(c)
	if err != nil {
		return err
	}
	t, err := h.Tastings.GetOwned(ctx, middleware.UserID(c), id)
	if err != nil {
		return h.ownershipFailure(c, err, msgCannotEdit)
	}
	return render(c, h.Flash, http.StatusOK, "tasting_form", "Edit tasting", editFormView(t))
}

// Edit replaces a tasting with the submitted form. An unparsable date keeps
// the stored date and time.
func (h *TastingHandler) Edit(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := pathID(c)
	if err != nil {
		return err
	}
	uid := middleware.UserID(c)
	cur, err := h.Tastings.GetOwned(ctx, uid, id)
	if err != nil {
		return h.ownershipFailure(c, err, msgCannotEdit)
	}
	fallback, err := cur.At(h.Loc)
	if err != nil {
		fallback = h.now()
	}

	in := decodeTastingForm(c, fallback, h.Loc)
	if _, err := h.Tastings.Edit(ctx, uid, id, in); err != nil {
		if errors.Is(err, service.ErrInvalidTasting) {
			return redirectWith(c, h.Flash, flash.KindError, msgStoreRequired, "/edit_tasting/"+strconv.FormatUint(id, 10))
		}
		return h.ownershipFailure(c, err, msgCannotEdit)
	}
	return redirectWith(c, h.Flash, flash.KindSuccess, msgUpdated, "/my_tastings")
}

// Delete removes a tasting.
func (h *TastingHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Tastings.Remove(ctx, middleware.UserID(c), id); err != nil {
		return h.ownershipFailure(c, err, msgCannotDelete)
	}
	return redirectWith(c, h.Flash, flash.KindSuccess, msgDeleted, "/my_tastings")
}

// ownershipFailure maps a lookup or mutation error: someone else's tasting
// goes back to the list with a notice, a missing one is a 404.
func (h *TastingHandler) ownershipFailure(c echo.Context, err error, forbiddenMsg string) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		h.Log.Warn("tasting ownership denied",
			zap.Uint64("user_id", middleware.UserID(c)),
			zap.String("tasting_id", c.Param("id")),
		)
		return redirectWith(c, h.Flash, flash.KindError, forbiddenMsg, "/my_tastings")
	case errors.Is(err, repository.ErrNotFound):
		return echo.ErrNotFound
	default:
		return err
	}
}

func (h *TastingHandler) now() time.Time {
	return h.Now().In(h.Loc)
}
