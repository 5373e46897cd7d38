package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

const testCookie = "prep_session"

func newGateApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("secret", time.Hour, nil)
	mw := NewAuthMiddleware(NewSessionResolver(tokens, testCookie, nil), nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	page := func(c *fiber.Ctx) error { return c.SendString("page") }
	app.Get("/", mw.Gate, page)
	app.Get("/login", mw.Gate, page)
	app.Get("/dashboard", mw.Gate, page)
	app.Get("/mod", mw.Gate, page)
	app.Get("/admin/*", mw.Gate, page)

	app.Get("/api/me", mw.Handle, func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		return c.SendString(claims.UserID)
	})
	app.Post("/api/blogs", mw.Handle, RequireStaff(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})
	return app, tokens
}

func request(t *testing.T, app *fiber.App, method, target, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func tokenFor(t *testing.T, tokens *TokenManager, role domain.Role) string {
	t.Helper()
	token, _, err := tokens.Issue(sampleUser(role), "sess-1")
	require.NoError(t, err)
	return token
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	app, _ := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard", resp.Header.Get("Location"))

	resp = request(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateRedirectsRoleToHome(t *testing.T) {
	app, tokens := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/dashboard", tokenFor(t, tokens, domain.RoleMod))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/mod", resp.Header.Get("Location"))

	resp = request(t, app, http.MethodGet, "/login", tokenFor(t, tokens, domain.RoleAdmin))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = request(t, app, http.MethodGet, "/admin/users", tokenFor(t, tokens, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateIgnoresPathCase(t *testing.T) {
	app, tokens := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/DASHBOARD", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2FDASHBOARD", resp.Header.Get("Location"))

	resp = request(t, app, http.MethodGet, "/Admin/users", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2FAdmin%2Fusers", resp.Header.Get("Location"))

	resp = request(t, app, http.MethodGet, "/ADMIN/users", tokenFor(t, tokens, domain.RoleStudent))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestGateTreatsCorruptCookieAsAnonymous(t *testing.T) {
	app, _ := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/mod", "garbage.token.value")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fmod", resp.Header.Get("Location"))
	assertCookieCleared(t, resp)

	resp = request(t, app, http.MethodGet, "/login", "garbage.token.value")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertCookieCleared(t, resp)
}

func TestValidCookieIsKept(t *testing.T) {
	app, tokens := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/api/me", tokenFor(t, tokens, domain.RoleStudent))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestHandleClearsRejectedCookie(t *testing.T) {
	app, _ := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/api/me", "garbage.token.value")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assertCookieCleared(t, resp)
}

func assertCookieCleared(t *testing.T, resp *http.Response) {
	t.Helper()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestHandleRequiresSession(t *testing.T) {
	app, tokens := newGateApp(t)

	resp := request(t, app, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, http.MethodGet, "/api/me", tokenFor(t, tokens, domain.RoleStudent))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireStaff(t *testing.T) {
	app, tokens := newGateApp(t)

	resp := request(t, app, http.MethodPost, "/api/blogs", tokenFor(t, tokens, domain.RoleStudent))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = request(t, app, http.MethodPost, "/api/blogs", tokenFor(t, tokens, domain.RoleMod))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSetCookieAttributes(t *testing.T) {
	resolver := NewSessionResolver(NewTokenManager("secret", time.Hour, nil), testCookie, nil)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		resolver.SetCookie(c, "tok", time.Now().Add(time.Hour))
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)
}
