package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// AdminHandler serves the administrator pages
type AdminHandler struct {
	accounts  AccountService
	watchlist WatchlistService
	pages     *PageHandler
	logger    arbor.ILogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accounts AccountService, watchlist WatchlistService, pages *PageHandler, logger arbor.ILogger) *AdminHandler {
	return &AdminHandler{
		accounts:  accounts,
		watchlist: watchlist,
		pages:     pages,
		logger:    logger,
	}
}

// IndexHandler shows account and watchlist totals
func (h *AdminHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list users")
		return
	}
	items, err := h.watchlist.ListAll(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list watchlist items")
		return
	}

	verified, admins := 0, 0
	for _, u := range users {
		if u.IsVerified {
			verified++
		}
		if u.IsAdmin {
			admins++
		}
	}

	h.pages.Render(w, r, http.StatusOK, "admin.html", map[string]interface{}{
		"UserCount":      len(users),
		"VerifiedCount":  verified,
		"AdminCount":     admins,
		"WatchlistCount": len(items),
	})
}

// UsersHandler lists every account, newest first
func (h *AdminHandler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list users")
		return
	}
	h.pages.Render(w, r, http.StatusOK, "admin_users.html", map[string]interface{}{"Users": users})
}

// WatchlistHandler lists every watchlist item with its owner
func (h *AdminHandler) WatchlistHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlist.ListAll(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list watchlist items")
		return
	}
	h.pages.Render(w, r, http.StatusOK, "admin_watchlist.html", map[string]interface{}{"Items": items})
}

func (h *AdminHandler) fail(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
