// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/authclient"
	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/credential"
	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newCodec(t *testing.T) *credential.CookieCodec {
	t.Helper()
	codec, err := credential.NewCookieCodec(&config.SessionConfig{CookieName: "dg_token", MaxAge: 3600}, false)
	require.NoError(t, err)
	return codec
}

// ClientID

func TestClientID_AssignsNewID(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)

	var seen string
	err := ClientID(false)(func(c echo.Context) error {
		seen = GetClientID(c)
		assert.Equal(t, seen, c.Request().Context().Value(appcontext.ClientID{}))
		return nil
	})(c)

	require.NoError(t, err)
	assert.Len(t, seen, 36)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), ClientCookieName+"="+seen)
}

func TestClientID_ReusesValidCookie(t *testing.T) {
	e := echo.New()
	const id = "9b2f0a64-8c1f-4d7e-9a3a-1f2e3d4c5b6a"
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	c.Request().AddCookie(&http.Cookie{Name: ClientCookieName, Value: id})

	var seen string
	err := ClientID(false)(func(c echo.Context) error {
		seen = GetClientID(c)
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, id, seen)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestClientID_ReplacesInvalidCookie(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	c.Request().AddCookie(&http.Cookie{Name: ClientCookieName, Value: "not-a-uuid"})

	var seen string
	err := ClientID(true)(func(c echo.Context) error {
		seen = GetClientID(c)
		return nil
	})(c)

	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", seen)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Secure")
}

// LoadSession

func runLoadSession(t *testing.T, api *testutil.FakeAPI, codec *credential.CookieCodec, cookie *http.Cookie) (*appcontext.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/dashboard", nil)
	if cookie != nil {
		c.Request().AddCookie(cookie)
	}

	var cc *appcontext.Context
	err := LoadSession(apiclient.New(api.Config()), codec)(func(c echo.Context) error {
		cc = appcontext.From(c)
		assert.Same(t, cc.Session, session.FromContext(c.Request().Context()))
		return nil
	})(c)
	require.NoError(t, err)
	require.NotNil(t, cc)
	return cc, rec
}

func TestLoadSession_Anonymous(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	cc, rec := runLoadSession(t, api, newCodec(t), nil)

	state := cc.Session.State()
	assert.False(t, state.Loading)
	assert.Nil(t, state.User)
	assert.Empty(t, cc.API.Header(apiclient.HeaderAuthorization))
	assert.Equal(t, 0, api.Requests())
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestLoadSession_ResolvesUserFromCookie(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	user := api.AddUser("alice@example.com", "secret", "Alice")
	token := api.Token(t, user.ID)
	codec := newCodec(t)
	cookie, err := codec.Encode(token)
	require.NoError(t, err)

	cc, _ := runLoadSession(t, api, codec, cookie)

	require.NotNil(t, cc.GetUser())
	assert.Equal(t, "Alice", cc.GetUser().DisplayName)
	assert.Equal(t, "Bearer "+token, cc.API.Header(apiclient.HeaderAuthorization))
}

func TestLoadSession_RejectedTokenClearsCookie(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	codec := newCodec(t)
	cookie, err := codec.Encode(testutil.SignToken(t, "999"))
	require.NoError(t, err)

	cc, rec := runLoadSession(t, api, codec, cookie)

	assert.Nil(t, cc.GetUser())
	assert.Empty(t, cc.API.Header(apiclient.HeaderAuthorization))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Set-Cookie"), "dg_token=;"))
}

func TestLoadSession_UnreachableAPIKeepsCookie(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	user := api.AddUser("alice@example.com", "secret", "Alice")
	api.Fail(http.MethodGet, "/users/"+user.ID.String(), http.StatusInternalServerError, "")
	codec := newCodec(t)
	cookie, err := codec.Encode(api.Token(t, user.ID))
	require.NoError(t, err)

	cc, rec := runLoadSession(t, api, codec, cookie)

	assert.Nil(t, cc.GetUser())
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

// Guards

type staticAuth struct {
	session.Authenticator
	user *models.User
}

func (a staticAuth) ResolveCurrentUser(context.Context) authclient.Resolution {
	if a.user == nil {
		return authclient.Resolution{Outcome: authclient.OutcomeNoSession}
	}
	return authclient.Resolution{Outcome: authclient.OutcomeAuthenticated, User: a.user}
}

func guardContext(t *testing.T, user *models.User, initialized bool, headers map[string]string) (*appcontext.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/page", nil, headers)
	ctrl := session.New(staticAuth{user: user})
	if initialized {
		ctrl.Init(context.Background())
	}
	return &appcontext.Context{Context: c, Session: ctrl}, rec
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	cc, rec := guardContext(t, nil, true, nil)

	require.NoError(t, RequireAuth()(okHandler)(cc))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRequireAuth_HtmxRedirect(t *testing.T) {
	cc, rec := guardContext(t, nil, true, map[string]string{"HX-Request": "true"})

	require.NoError(t, RequireAuth()(okHandler)(cc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("HX-Redirect"))
}

func TestRequireAuth_AllowsUser(t *testing.T) {
	cc, rec := guardContext(t, &models.User{ID: "1"}, true, nil)

	require.NoError(t, RequireAuth()(okHandler)(cc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequireAuth_WithoutSessionRedirects(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/page", nil)

	require.NoError(t, RequireAuth()(okHandler)(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequireGuest_RedirectsUser(t *testing.T) {
	cc, rec := guardContext(t, &models.User{ID: "1"}, true, nil)

	require.NoError(t, RequireGuest()(okHandler)(cc))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRequireGuest_AllowsAnonymous(t *testing.T) {
	cc, rec := guardContext(t, nil, true, nil)

	require.NoError(t, RequireGuest()(okHandler)(cc))

	assert.Equal(t, "ok", rec.Body.String())
}

func TestGuards_WaitWhileLoading(t *testing.T) {
	for name, mw := range map[string]echo.MiddlewareFunc{"auth": RequireAuth(), "guest": RequireGuest()} {
		t.Run(name, func(t *testing.T) {
			cc, rec := guardContext(t, nil, false, nil)

			require.NoError(t, mw(okHandler)(cc))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "1", rec.Header().Get("Refresh"))
			assert.Empty(t, rec.Header().Get("Location"))
			assert.NotEqual(t, "ok", rec.Body.String())
		})
	}
}

// RateLimiter

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, rate.Limit(0.001), 2)
	e := echo.New()
	h := rl.Middleware()(okHandler)

	for range 2 {
		c, _ := testutil.NewEchoContext(e, http.MethodPost, "/auth/login", nil)
		require.NoError(t, h(c))
	}

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/auth/login", nil)
	err := h(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_SeparatesIPs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, rate.Limit(0.001), 1)
	e := echo.New()
	h := rl.Middleware()(okHandler)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodPost, "/", nil, map[string]string{"X-Real-IP": ip})
		require.NoError(t, h(c))
	}
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_ZeroRateDisables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0, 0)
	e := echo.New()
	h := rl.Middleware()(okHandler)

	for range 5 {
		c, _ := testutil.NewEchoContext(e, http.MethodPost, "/", nil)
		require.NoError(t, h(c))
	}
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiter_Prune(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1)
	rl.allow("10.0.0.1")

	rl.prune(time.Now().Add(-time.Minute))
	assert.Equal(t, 1, rl.Len())

	rl.prune(time.Now().Add(time.Minute))
	assert.Equal(t, 0, rl.Len())
}

// Locale

func TestLocale(t *testing.T) {
	require.NoError(t, i18n.Init())
	e := echo.New()
	c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{"Accept-Language": "de-DE,de;q=0.9"})

	var locale string
	err := Locale()(func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, "de", locale)
}

// RequestLogger

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/about", okHandler)
	e.GET("/health", okHandler)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/about", entry["uri"])
	assert.EqualValues(t, 200, entry["status"])
}

func TestRequestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/boom", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "boom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

// StripTrailingSlash

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		path     string
		location string
		code     int
	}{
		{"/", "", http.StatusOK},
		{"/about", "", http.StatusOK},
		{"/about/", "/about", http.StatusMovedPermanently},
		{"/tickets/?state=todo", "/tickets?state=todo", http.StatusMovedPermanently},
		{"//evil.example/", "/evil.example", http.StatusMovedPermanently},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := echo.New()
			c, rec := testutil.NewEchoContext(e, http.MethodGet, tt.path, nil)

			require.NoError(t, StripTrailingSlash()(okHandler)(c))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}
