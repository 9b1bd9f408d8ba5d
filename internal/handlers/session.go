package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/models"
)

const flashCookieName = "fundscope_flash"

// Flash categories, matching the CSS alert classes
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash queues a message for the next page render.
// Messages accumulate across calls within one response.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(pendingFlashes(r), Flash{Category: category, Message: message})
	setPendingFlashes(r, flashes)

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns queued messages and clears the flash cookie
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

type contextKey int

const (
	userKey contextKey = iota
	flashKey
)

// flashBox lets AddFlash accumulate messages on the request it was given
type flashBox struct {
	flashes []Flash
}

func pendingFlashes(r *http.Request) []Flash {
	if box, ok := r.Context().Value(flashKey).(*flashBox); ok {
		return box.flashes
	}
	return nil
}

func setPendingFlashes(r *http.Request, flashes []Flash) {
	if box, ok := r.Context().Value(flashKey).(*flashBox); ok {
		box.flashes = flashes
	}
}

// UserFromContext returns the logged-in user, nil for anonymous requests
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// SessionManager resolves session cookies and guards routes
type SessionManager struct {
	accounts   AccountService
	cookieName string
	secure     bool
	logger     arbor.ILogger
}

// NewSessionManager creates a session manager using the named cookie
func NewSessionManager(accounts AccountService, cookieName string, secure bool, logger arbor.ILogger) *SessionManager {
	if cookieName == "" {
		cookieName = "fundscope_session"
	}
	return &SessionManager{
		accounts:   accounts,
		cookieName: cookieName,
		secure:     secure,
		logger:     logger,
	}
}

// LoadUser attaches the session's user, if any, to the request context
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), flashKey, &flashBox{})

		if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
			user, err := m.accounts.CurrentUser(ctx, cookie.Value)
			if err == nil {
				ctx = context.WithValue(ctx, userKey, user)
			} else {
				m.clearCookie(w)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous requests to the login page
func (m *SessionManager) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			AddFlash(w, r, FlashWarning, "Please log in first.")
			redirect(w, r, "/login")
			return
		}
		next(w, r)
	}
}

// RequireAPILogin rejects anonymous API requests with a JSON 401
func (m *SessionManager) RequireAPILogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			WriteError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin allows only administrators through
func (m *SessionManager) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		if user := UserFromContext(r.Context()); !user.IsAdmin {
			m.logger.Warn().
				Str("user_id", user.ID).
				Str("path", r.URL.Path).
				Msg("Admin access denied")
			AddFlash(w, r, FlashDanger, "You do not have admin access.")
			redirect(w, r, "/dashboard")
			return
		}
		next(w, r)
	})
}

// SetSessionCookie stores the session token in the browser
func (m *SessionManager) SetSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken returns the session token sent by the browser
func (m *SessionManager) SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlashes returns messages from the previous response plus any queued on
// this request, and clears the flash cookie
func takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := PopFlashes(w, r)
	if pending := pendingFlashes(r); len(pending) > 0 {
		flashes = append(flashes, pending...)
		setPendingFlashes(r, nil)
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return flashes
}
