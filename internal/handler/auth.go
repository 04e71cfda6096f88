package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/service"
	"github.com/bbmitchh/Logmypour2/internal/utils"
)

// Notices shown by the account pages.
const (
	msgBadLogin       = "Incorrect email or password."
	msgBadCode        = "Invalid special code."
	msgEmailTaken     = "Email already registered."
	msgSignupRequired = "Email and password are required."
	msgPasswordLong   = "Password must be at most 72 bytes."
	msgAccountCreated = "Account created! Please log in."
	msgLoggedOut      = "You have been logged out."
)

// AccountService is what the account pages need from service.Accounts.
type AccountService interface {
	Verify(ctx context.Context, email, password string) (*model.User, error)
	CreateAccount(ctx context.Context, in service.SignupInput, code string) (*model.User, error)
	StartSession(ctx context.Context, userID uint64) (utils.SessionToken, error)
	EndSession(ctx context.Context, sessionID string) error
}

// AuthHandler bundles dependencies for the login, signup and logout pages.
type AuthHandler struct {
	Accounts AccountService
	Flash    flash.Store
	Cookies  middleware.SessionCookies
	Log      *zap.Logger
}

func NewAuthHandler(accounts AccountService, flashes flash.Store, cookies middleware.SessionCookies, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Flash: flashes, Cookies: cookies, Log: log}
}

// LoginPage shows the login form, or sends a signed-in user to the dashboard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return render(c, h.Flash, http.StatusOK, "login", "Log in", nil)
}

// Login verifies the form credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Verify(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return redirectWith(c, h.Flash, flash.KindError, msgBadLogin, "/")
		}
		return err
	}
	tok, err := h.Accounts.StartSession(ctx, u.ID)
	if err != nil {
		return err
	}
	h.Cookies.Set(c, tok)
	h.Log.Info("user logged in", zap.Uint64("user_id", u.ID))
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// SignupPage shows the signup form.
func (h *AuthHandler) SignupPage(c echo.Context) error {
	return render(c, h.Flash, http.StatusOK, "signup", "Sign up", nil)
}

// Signup creates an account when the special code matches.
func (h *AuthHandler) Signup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	in := service.SignupInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
	}
	_, err := h.Accounts.CreateAccount(ctx, in, c.FormValue("special_code"))
	switch {
	case err == nil:
		return redirectWith(c, h.Flash, flash.KindSuccess, msgAccountCreated, "/")
	case errors.Is(err, service.ErrInvalidCode):
		return redirectWith(c, h.Flash, flash.KindError, msgBadCode, "/signup")
	case errors.Is(err, repository.ErrEmailExists):
		return redirectWith(c, h.Flash, flash.KindError, msgEmailTaken, "/signup")
	case errors.Is(err, service.ErrInvalidSignup):
		return redirectWith(c, h.Flash, flash.KindError, msgSignupRequired, "/signup")
	case errors.Is(err, service.ErrPasswordTooLong):
		return redirectWith(c, h.Flash, flash.KindError, msgPasswordLong, "/signup")
	default:
		return err
	}
}

// Logout revokes the current session and clears its cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if sid := middleware.SessionID(c); sid != "" {
		if err := h.Accounts.EndSession(ctx, sid); err != nil {
			h.Log.Error("end session failed", zap.Error(err))
		}
	}
	h.Cookies.Clear(c)
	h.Flash.Add(c, flash.KindInfo, msgLoggedOut)
	return c.Redirect(http.StatusFound, "/")
}
