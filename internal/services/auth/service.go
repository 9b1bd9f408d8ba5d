// -----------------------------------------------------------------------
// Auth Service - accounts, email verification, sessions, password reset
// -----------------------------------------------------------------------

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotVerified        = errors.New("account email is not verified")
	ErrInvalidToken       = errors.New("invalid or unknown token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPasswordMismatch   = errors.New("password is empty or does not match confirmation")
)

// RegisterInput is the registration form
type RegisterInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Confirm  string `validate:"required"`
}

// Service implements account management on top of user and session storage
type Service struct {
	users    interfaces.UserStorage
	sessions interfaces.SessionStorage
	mailer   interfaces.Mailer
	config   *common.Config
	validate *validator.Validate
	logger   arbor.ILogger
	now      func() time.Time
	hashCost int
}

// NewService creates a new auth service
func NewService(
	users interfaces.UserStorage,
	sessions interfaces.SessionStorage,
	mailer interfaces.Mailer,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		config:   config,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// ValidationError reports which registration field failed validation
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed %s validation", strings.ToLower(e.Field), e.Tag)
}

func (s *Service) validateInput(input RegisterInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field(), Tag: fieldErrs[0].Tag()}
	}
	return err
}

// Register creates an unverified account and mails its verification link
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if input.Password != input.Confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		VerifyToken:  uuid.NewString(),
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	link := fmt.Sprintf("%s/verify/%s", s.config.PublicBaseURL(), user.VerifyToken)
	body := fmt.Sprintf("Hello **%s**,\n\nPlease confirm your email address by opening the link below:\n\n[%s](%s)\n",
		user.Username, link, link)
	s.sendMail(ctx, user.Email, "Verify your Fundscope account", body)

	return user, nil
}

// Verify marks the account owning token as verified
func (s *Service) Verify(ctx context.Context, token string) (*models.User, error) {
	user, err := s.users.GetUserByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user.IsVerified = true
	user.VerifyToken = ""
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User email verified")
	return user, nil
}

// Login checks credentials and opens a new session
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Debug().Str("username", user.Username).Msg("Login rejected: bad password")
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, nil, ErrNotVerified
	}

	now := s.now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL()),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")
	return session, user, nil
}

// Logout removes the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return err
	}
	return nil
}

// CurrentUser resolves a session token to its user.
// Returns interfaces.ErrNotFound when the session is missing or expired.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, interfaces.ErrNotFound
	}
	return s.users.GetUser(ctx, session.UserID)
}

// RequestPasswordReset issues a reset token for the account with email
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}

	expires := s.now().Add(s.config.ResetTokenTTL())
	user.ResetToken = uuid.NewString()
	user.ResetExpires = &expires
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("expires", expires.Format(time.RFC3339)).
		Msg("Password reset requested")

	link := fmt.Sprintf("%s/reset/%s", s.config.PublicBaseURL(), user.ResetToken)
	body := fmt.Sprintf("Hello **%s**,\n\nA password reset was requested for your account. "+
		"Open the link below to choose a new password:\n\n[%s](%s)\n\n"+
		"The link expires at %s. Ignore this email if you did not request it.\n",
		user.Username, link, link, expires.UTC().Format("2006-01-02 15:04 MST"))
	s.sendMail(ctx, user.Email, "Reset your Fundscope password", body)

	return nil
}

// CheckResetToken returns the user for a usable reset token
func (s *Service) CheckResetToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.ResetTokenExpired(s.now()) {
		user.ResetToken = ""
		user.ResetExpires = nil
		if err := s.users.UpdateUser(ctx, user); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to clear expired reset token")
		}
		return nil, ErrTokenExpired
	}
	return user, nil
}

// ResetPassword sets a new password using a reset token
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	user, err := s.CheckResetToken(ctx, token)
	if err != nil {
		return err
	}
	if password == "" || password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetExpires = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset completed")
	return nil
}

// EnsureAdmin creates or refreshes the configured administrator account.
// Skipped when no admin password is configured.
func (s *Service) EnsureAdmin(ctx context.Context) error {
	cfg := s.config.Auth
	if cfg.AdminPassword == "" {
		s.logger.Debug().Msg("Admin bootstrap skipped: no admin password configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := s.users.GetUserByUsername(ctx, cfg.AdminUsername)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		user = &models.User{
			ID:        uuid.NewString(),
			Username:  cfg.AdminUsername,
			CreatedAt: s.now(),
		}
		s.applyAdmin(user, string(hash))
		if err := s.users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		s.logger.Info().Str("username", user.Username).Msg("Admin account created")
	case err != nil:
		return err
	default:
		s.applyAdmin(user, string(hash))
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to update admin account: %w", err)
		}
		s.logger.Info().Str("username", user.Username).Msg("Admin account refreshed")
	}
	return nil
}

func (s *Service) applyAdmin(user *models.User, hash string) {
	user.Email = s.config.Auth.AdminEmail
	user.PasswordHash = hash
	user.IsAdmin = true
	user.IsVerified = true
	user.VerifyToken = ""
	user.ResetToken = ""
	user.ResetExpires = nil
}

// ListUsers returns every account, newest first
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// PurgeExpired deletes expired sessions and clears expired reset tokens
func (s *Service) PurgeExpired(ctx context.Context) error {
	now := s.now()

	sessions, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}
	tokens, err := s.users.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clear reset tokens: %w", err)
	}

	if sessions > 0 || tokens > 0 {
		s.logger.Info().
			Int("sessions", sessions).
			Int("reset_tokens", tokens).
			Msg("Purged expired credentials")
	}
	return nil
}

// sendMail delivers account mail; failures are logged and the flow continues
func (s *Service) sendMail(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn().
			Err(err).
			Str("to", to).
			Str("subject", subject).
			Msg("Failed to send account email")
	}
}
