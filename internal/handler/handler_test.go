package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/service"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
	"github.com/bbmitchh/Logmypour2/internal/utils"
	"github.com/bbmitchh/Logmypour2/internal/view"
)

// goodCookie is the session cookie value the fake resolver accepts.
const goodCookie = "good-token"

var alice = model.User{ID: 1, FirstName: "Alice", Email: "alice@example.com"}

type fakeAccounts struct {
	verifyErr  error
	createErr  error
	gotCode    string
	gotSignup  service.SignupInput
	endedIDs   []string
	startedFor uint64
}

func (f *fakeAccounts) Verify(_ context.Context, email, _ string) (*model.User, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	u := alice
	u.Email = email
	return &u, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in service.SignupInput, code string) (*model.User, error) {
	f.gotSignup, f.gotCode = in, code
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.User{ID: 2, Email: in.Email}, nil
}

func (f *fakeAccounts) StartSession(_ context.Context, userID uint64) (utils.SessionToken, error) {
	f.startedFor = userID
	return utils.SessionToken{Token: "issued-token"}, nil
}

func (f *fakeAccounts) EndSession(_ context.Context, sessionID string) error {
	f.endedIDs = append(f.endedIDs, sessionID)
	return nil
}

func (f *fakeAccounts) ResolveSession(_ context.Context, raw string) (*service.Identity, error) {
	if raw != goodCookie {
		return nil, utils.ErrInvalidSession
	}
	return &service.Identity{User: alice, SessionID: "sess-1"}, nil
}

type fakeTastings struct {
	submitted []service.TastingInput
	edited    []service.TastingInput
	removed   []uint64
	owned     model.Tasting
	err       error // returned by GetOwned, Edit and Remove
	submitErr error
	summary   tasting.Cumulative
	history   service.History
}

func (f *fakeTastings) Submit(_ context.Context, _ uint64, in service.TastingInput) (model.Tasting, error) {
	if f.submitErr != nil {
		return model.Tasting{}, f.submitErr
	}
	f.submitted = append(f.submitted, in)
	return model.Tasting{ID: 10}, nil
}

func (f *fakeTastings) History(context.Context, uint64) (service.History, error) {
	return f.history, nil
}

func (f *fakeTastings) Summary(context.Context, uint64) (tasting.Cumulative, error) {
	return f.summary, nil
}

func (f *fakeTastings) GetOwned(context.Context, uint64, uint64) (model.Tasting, error) {
	if f.err != nil {
		return model.Tasting{}, f.err
	}
	return f.owned, nil
}

func (f *fakeTastings) Edit(_ context.Context, _, _ uint64, in service.TastingInput) (model.Tasting, error) {
	if f.err != nil {
		return model.Tasting{}, f.err
	}
	f.edited = append(f.edited, in)
	return f.owned, nil
}

func (f *fakeTastings) Remove(_ context.Context, _, id uint64) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, id)
	return nil
}

// newTestServer wires the handlers the way the router does, minus CSRF and
// throttling.
func newTestServer(t *testing.T, acc *fakeAccounts, ts *fakeTastings) *echo.Echo {
	t.Helper()
	r, err := view.New()
	require.NoError(t, err)

	flashes := flash.Store{}
	cookies := middleware.SessionCookies{}
	log := zap.NewNop()

	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(log, flashes)
	e.Use(middleware.LoadSession(acc, cookies, log))

	auth := NewAuthHandler(acc, flashes, cookies, log)
	e.GET("/", auth.LoginPage)
	e.POST("/", auth.Login)
	e.GET("/signup", auth.SignupPage)
	e.POST("/signup", auth.Signup)

	guard := middleware.RequireSession(flashes)
	e.GET("/logout", auth.Logout, guard)
	th := NewTastingHandler(ts, flashes, log)
	th.Loc = time.UTC
	e.GET("/dashboard", th.Dashboard, guard)
	e.GET("/submit_tasting", th.SubmitForm, guard)
	e.POST("/submit_tasting", th.Submit, guard)
	e.GET("/my_tastings", th.MyTastings, guard)
	e.GET("/edit_tasting/:id", th.EditForm, guard)
	e.POST("/edit_tasting/:id", th.Edit, guard)
	e.POST("/delete_tasting/:id", th.Delete, guard)
	return e
}

func get(e *echo.Echo, path string, signedIn bool) *httptest.ResponseRecorder {
	return do(e, httptest.NewRequest(http.MethodGet, path, nil), signedIn)
}

func postForm(e *echo.Echo, path string, form url.Values, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return do(e, req, signedIn)
}

func do(e *echo.Echo, req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	if signedIn {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: goodCookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// flashes decodes the last flash cookie written to rec.
func flashes(t *testing.T, rec *httptest.ResponseRecorder) []flash.Notice {
	t.Helper()
	var last *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName {
			last = c
		}
	}
	require.NotNil(t, last, "no flash cookie")
	raw, err := base64.RawURLEncoding.DecodeString(last.Value)
	require.NoError(t, err)
	var out []flash.Notice
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
