package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/services/auth"
)

// AuthHandler serves registration, login and password recovery pages
type AuthHandler struct {
	accounts AccountService
	sessions *SessionManager
	pages    *PageHandler
	logger   arbor.ILogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService, sessions *SessionManager, pages *PageHandler, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		pages:    pages,
		logger:   logger,
	}
}

// IndexHandler sends visitors to the dashboard or the login page
func (h *AuthHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		redirect(w, r, "/dashboard")
		return
	}
	redirect(w, r, "/login")
}

// RegisterHandler handles GET (form) and POST (create account) on /register
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.pages.Render(w, r, http.StatusOK, "register.html", nil)
		return
	}

	input := auth.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
	}
	form := map[string]interface{}{
		"Username": strings.TrimSpace(input.Username),
		"Email":    strings.TrimSpace(input.Email),
	}

	_, err := h.accounts.Register(r.Context(), input)
	if err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr) && validationErr.Tag == "email":
			AddFlash(w, r, FlashDanger, "Please enter a valid email address.")
		case errors.As(err, &validationErr):
			AddFlash(w, r, FlashDanger, "All fields are required.")
		case errors.Is(err, auth.ErrPasswordMismatch):
			AddFlash(w, r, FlashDanger, "Passwords do not match.")
		case errors.Is(err, auth.ErrUsernameTaken):
			AddFlash(w, r, FlashDanger, "Username or email is already taken.")
		default:
			h.logger.Error().Err(err).Msg("Registration failed")
			AddFlash(w, r, FlashDanger, "Registration failed. Please try again.")
		}
		h.pages.Render(w, r, http.StatusBadRequest, "register.html", form)
		return
	}

	AddFlash(w, r, FlashSuccess, "Registration successful. Check your email to verify your account.")
	redirect(w, r, "/login")
}

// LoginHandler handles GET (form) and POST (authenticate) on /login
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if UserFromContext(r.Context()) != nil {
			redirect(w, r, "/dashboard")
			return
		}
		h.pages.Render(w, r, http.StatusOK, "login.html", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	session, _, err := h.accounts.Login(r.Context(), username, r.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, auth.ErrNotVerified):
			AddFlash(w, r, FlashWarning, "Your account is not verified yet. Check your email for the verification link.")
			status = http.StatusForbidden
		case errors.Is(err, auth.ErrInvalidCredentials):
			AddFlash(w, r, FlashDanger, "Invalid username or password.")
		default:
			h.logger.Error().Err(err).Msg("Login failed")
			AddFlash(w, r, FlashDanger, "Login failed. Please try again.")
			status = http.StatusInternalServerError
		}
		h.pages.Render(w, r, status, "login.html", map[string]interface{}{"Username": username})
		return
	}

	h.sessions.SetSessionCookie(w, session)
	AddFlash(w, r, FlashSuccess, "Login successful.")
	redirect(w, r, "/dashboard")
}

// LogoutHandler ends the session
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), h.sessions.SessionToken(r)); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to delete session")
	}
	h.sessions.clearCookie(w)
	AddFlash(w, r, FlashInfo, "You have been logged out.")
	redirect(w, r, "/login")
}

// VerifyHandler confirms an email address from the link in the verification mail
func (h *AuthHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	_, err := h.accounts.Verify(r.Context(), r.PathValue("token"))
	switch {
	case err == nil:
		AddFlash(w, r, FlashSuccess, "Email verified. You can now log in.")
	case errors.Is(err, auth.ErrInvalidToken):
		AddFlash(w, r, FlashDanger, "Invalid or already used verification link.")
	default:
		h.logger.Error().Err(err).Msg("Verification failed")
		AddFlash(w, r, FlashDanger, "Verification failed. Please try again.")
	}
	redirect(w, r, "/login")
}

// ForgotPasswordHandler handles GET (form) and POST (send reset link)
func (h *AuthHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.pages.Render(w, r, http.StatusOK, "forgot_password.html", nil)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		AddFlash(w, r, FlashDanger, "Email is required.")
		h.pages.Render(w, r, http.StatusBadRequest, "forgot_password.html", nil)
		return
	}

	err := h.accounts.RequestPasswordReset(r.Context(), email)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		AddFlash(w, r, FlashDanger, "Email is not registered.")
		h.pages.Render(w, r, http.StatusNotFound, "forgot_password.html", map[string]interface{}{"Email": email})
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("Password reset request failed")
		AddFlash(w, r, FlashDanger, "Could not start the password reset. Please try again.")
		h.pages.Render(w, r, http.StatusInternalServerError, "forgot_password.html", map[string]interface{}{"Email": email})
		return
	}

	AddFlash(w, r, FlashInfo, "A password reset link has been sent to your email.")
	redirect(w, r, "/login")
}

// ResetPasswordHandler handles GET (form) and POST (set password) on /reset/{token}
func (h *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if r.Method != http.MethodPost {
		if _, err := h.accounts.CheckResetToken(r.Context(), token); err != nil {
			h.rejectResetToken(w, r, err)
			return
		}
		h.pages.Render(w, r, http.StatusOK, "reset_password.html", map[string]interface{}{"Token": token})
		return
	}

	err := h.accounts.ResetPassword(r.Context(), token, r.FormValue("password"), r.FormValue("confirm_password"))
	switch {
	case err == nil:
		AddFlash(w, r, FlashSuccess, "Password updated. Please log in.")
		redirect(w, r, "/login")
	case errors.Is(err, auth.ErrPasswordMismatch):
		AddFlash(w, r, FlashDanger, "Passwords are empty or do not match.")
		h.pages.Render(w, r, http.StatusBadRequest, "reset_password.html", map[string]interface{}{"Token": token})
	default:
		h.rejectResetToken(w, r, err)
	}
}

func (h *AuthHandler) rejectResetToken(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		AddFlash(w, r, FlashDanger, "Invalid or expired reset link.")
	default:
		h.logger.Error().Err(err).Msg("Password reset failed")
		AddFlash(w, r, FlashDanger, "Password reset failed. Please try again.")
	}
	redirect(w, r, "/forgot-password")
}
