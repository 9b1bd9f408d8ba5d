package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
	badgerstore "github.com/ternarybob/fundscope/internal/storage/badger"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return m.err
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	service *Service
	mailer  *fakeMailer
	storage interfaces.StorageManager
	clock   *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := arbor.NewLogger()

	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	config := common.NewDefaultConfig()
	config.Server.BaseURL = "https://fundscope.test"
	config.Auth.AdminPassword = "s3cret"

	mailer := &fakeMailer{}
	service := NewService(storage.UserStorage(), storage.SessionStorage(), mailer, config, logger)
	service.hashCost = bcrypt.MinCost

	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	env := &testEnv{service: service, mailer: mailer, storage: storage, clock: &clock}
	service.now = func() time.Time { return *env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Confirm:  "hunter22",
	}
}

func tokenFromLink(t *testing.T, body, prefix string) string {
	t.Helper()
	idx := strings.Index(body, prefix)
	require.GreaterOrEqual(t, idx, 0, "link %q not found in %q", prefix, body)
	rest := body[idx+len(prefix):]
	end := strings.IndexAny(rest, ")\n ]")
	if end < 0 {
		end = len(rest)
	}
	return rest[:end]
}

func TestRegister_SendsVerificationLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)

	assert.False(t, user.IsVerified)
	assert.NotEmpty(t, user.VerifyToken)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	mail := env.mailer.last(t)
	assert.Equal(t, "alice@example.com", mail.to)
	token := tokenFromLink(t, mail.body, "https://fundscope.test/verify/")
	assert.Equal(t, user.VerifyToken, token)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("missing username", func(t *testing.T) {
		input := validInput()
		input.Username = "   "
		_, err := env.service.Register(ctx, input)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Username", verr.Field)
	})

	t.Run("bad email", func(t *testing.T) {
		input := validInput()
		input.Email = "not-an-email"
		_, err := env.service.Register(ctx, input)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "email", verr.Tag)
	})

	t.Run("password mismatch", func(t *testing.T) {
		input := validInput()
		input.Confirm = "different"
		_, err := env.service.Register(ctx, input)
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = env.service.Register(ctx, validInput())
	assert.ErrorIs(t, err, ErrUsernameTaken)

	other := validInput()
	other.Username = "bob"
	_, err = env.service.Register(ctx, other)
	assert.ErrorIs(t, err, ErrUsernameTaken, "email is unique too")
}

func TestRegister_MailFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("smtp down")

	user, err := env.service.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestVerifyAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)

	_, _, err = env.service.Login(ctx, "alice", "hunter22")
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = env.service.Verify(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)

	verified, err := env.service.Verify(ctx, user.VerifyToken)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.VerifyToken)

	_, err = env.service.Verify(ctx, user.VerifyToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "token is single use")

	_, _, err = env.service.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.service.Login(ctx, "mallory", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, loggedIn, err := env.service.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, env.clock.Add(24*time.Hour), session.ExpiresAt)

	current, err := env.service.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	require.NoError(t, env.service.Logout(ctx, session.Token))
	_, err = env.service.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = env.service.Verify(ctx, user.VerifyToken)
	require.NoError(t, err)

	session, _, err := env.service.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	env.advance(25 * time.Hour)
	_, err = env.service.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = env.service.Verify(ctx, user.VerifyToken)
	require.NoError(t, err)

	err = env.service.RequestPasswordReset(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, env.service.RequestPasswordReset(ctx, "alice@example.com"))
	token := tokenFromLink(t, env.mailer.last(t).body, "https://fundscope.test/reset/")

	err = env.service.ResetPassword(ctx, "bogus", "newpass", "newpass")
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = env.service.ResetPassword(ctx, token, "newpass", "other")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = env.service.ResetPassword(ctx, token, "", "")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	require.NoError(t, env.service.ResetPassword(ctx, token, "newpass", "newpass"))

	_, _, err = env.service.Login(ctx, "alice", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.service.Login(ctx, "alice", "newpass")
	assert.NoError(t, err)

	err = env.service.ResetPassword(ctx, token, "again", "again")
	assert.ErrorIs(t, err, ErrInvalidToken, "token cleared after use")
}

func TestPasswordReset_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, env.service.RequestPasswordReset(ctx, "alice@example.com"))
	token := tokenFromLink(t, env.mailer.last(t).body, "https://fundscope.test/reset/")

	env.advance(2 * time.Hour)

	err = env.service.ResetPassword(ctx, token, "newpass", "newpass")
	assert.ErrorIs(t, err, ErrTokenExpired)

	err = env.service.ResetPassword(ctx, token, "newpass", "newpass")
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token is cleared")
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.service.EnsureAdmin(ctx))
	require.NoError(t, env.service.EnsureAdmin(ctx), "second run updates in place")

	users, err := env.service.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].IsAdmin)
	assert.True(t, users[0].IsVerified)

	_, loggedIn, err := env.service.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, loggedIn.IsAdmin)
}

func TestEnsureAdmin_SkippedWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	env.service.config.Auth.AdminPassword = ""

	require.NoError(t, env.service.EnsureAdmin(context.Background()))
	users, err := env.service.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPurgeExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = env.service.Verify(ctx, user.VerifyToken)
	require.NoError(t, err)

	session, _, err := env.service.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	require.NoError(t, env.service.RequestPasswordReset(ctx, "alice@example.com"))

	env.advance(48 * time.Hour)
	require.NoError(t, env.service.PurgeExpired(ctx))

	_, err = env.storage.SessionStorage().GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	stored, err := env.storage.UserStorage().GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetExpires)
}
