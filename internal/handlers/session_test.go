package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireLogin_RedirectsWithFlash(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	rec := b.get("/dashboard")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, b.cookies, flashCookieName)

	doc := parseHTML(t, b.get("/login"))
	assert.Equal(t, []string{"Please log in first."}, alerts(doc, FlashWarning))
	assert.NotContains(t, b.cookies, flashCookieName)
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "hunter22")

	t.Run("regular user is sent to the dashboard", func(t *testing.T) {
		b := env.browser(t)
		b.login("alice", "hunter22")
		b.get("/dashboard")

		rec := b.get("/admin")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

		doc := parseHTML(t, b.get("/dashboard"))
		assert.Equal(t, []string{"You do not have admin access."}, alerts(doc, FlashDanger))
	})

	t.Run("anonymous user is sent to login", func(t *testing.T) {
		rec := env.browser(t).get("/admin/users")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("admin sees the pages", func(t *testing.T) {
		b := env.browser(t)
		b.login("admin", "admin-pass")

		rec := b.get("/admin")
		require.Equal(t, http.StatusOK, rec.Code)
		doc := parseHTML(t, rec)
		assert.Equal(t, "2", doc.Find("#stat-users").Text())
		assert.Equal(t, "1", doc.Find("#stat-admins").Text())

		rec = b.get("/admin/users")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alice@example.com")

		rec = b.get("/admin/watchlist")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoadUser_ClearsStaleSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: env.config.Auth.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.config.Auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAddFlash_AccumulatesWithinResponse(t *testing.T) {
	env := newTestEnv(t)
	var flashes []Flash

	handler := env.sessions.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddFlash(w, r, FlashInfo, "first")
		AddFlash(w, r, FlashWarning, "second")
		flashes = takeFlashes(w, r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []Flash{
		{Category: FlashInfo, Message: "first"},
		{Category: FlashWarning, Message: "second"},
	}, flashes)
}
