package user_services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-counselor/internal/database"
	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/account"
	"github.com/iyunix/go-counselor/internal/repository/user"
	"github.com/iyunix/go-counselor/internal/repository/verification"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type capturingMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *capturingMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[to] = token
	return nil
}

func (m *capturingMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type authFixture struct {
	db           *gorm.DB
	users        user.UserRepository
	accounts     account.AccountRepository
	mailer       *capturingMailer
	verification *VerificationService
	auth         *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	conn, err := database.Connect(database.Options{URL: ":memory:", SQLLogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, conn.EnsureInitialized(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })

	f := &authFixture{
		db:       conn.DB,
		users:    user.NewGormUserRepository(conn.DB),
		accounts: account.NewGormAccountRepository(conn.DB),
		mailer:   &capturingMailer{},
	}
	f.verification = NewVerificationService(f.users, verification.NewGormVerificationRepository(conn.DB), f.mailer, nopLogger{})
	f.auth, err = NewAuthService(f.users, f.accounts, f.verification, NewLockoutService(nopLogger{}), "test-secret", nopLogger{})
	require.NoError(t, err)
	return f
}

func TestAuthService_RegisterLoginAuthenticateLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "Ada", "Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.False(t, u.IsVerified())
	assert.NotEmpty(t, f.mailer.token("ada@example.com"))

	_, err = f.auth.Register(ctx, "Ada", "ada@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.auth.Login(ctx, "ada@example.com", "wrong", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := f.auth.Login(ctx, "ADA@example.com", "secret1", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	me, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	require.NoError(t, f.auth.Logout(ctx, res.Token))
	_, err = f.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "Bob", "bob@example.com", "123")
	assert.ErrorIs(t, err, ErrInvalidRegistration)
	_, err = f.auth.Register(ctx, "", "bob@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidRegistration)
	_, err = f.auth.Register(ctx, "Bob", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestAuthService_LockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "Cy", "cy@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err = f.auth.Login(ctx, "cy@example.com", "nope", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = f.auth.Login(ctx, "cy@example.com", "nope", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)

	_, err = f.auth.Login(ctx, "cy@example.com", "secret1", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerificationService_VerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "Dee", "dee@example.com", "secret1")
	require.NoError(t, err)
	token := f.mailer.token("dee@example.com")
	require.NotEmpty(t, token)

	_, err = f.verification.VerifyEmail(ctx, "dee@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidVerification)

	u, err := f.verification.VerifyEmail(ctx, "dee@example.com", token)
	require.NoError(t, err)
	assert.True(t, u.IsVerified())

	_, err = f.verification.VerifyEmail(ctx, "dee@example.com", token)
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestLockoutService(t *testing.T) {
	s := NewLockoutService(nopLogger{})
	for i := 0; i < MaxFailedAttempts-1; i++ {
		assert.False(t, s.RecordFailedAttempt("x@example.com", "ip"))
	}
	assert.Equal(t, MaxFailedAttempts-1, s.FailedAttempts("X@example.com"))
	assert.True(t, s.RecordFailedAttempt("x@example.com", "ip"))

	locked, remaining := s.IsAccountLocked("x@example.com")
	assert.True(t, locked)
	assert.Greater(t, remaining.Minutes(), 14.0)

	s.ClearFailedAttempts("x@example.com")
	locked, _ = s.IsAccountLocked("x@example.com")
	assert.False(t, locked)
}

func TestOAuthService_GoogleCallback(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":"g-42","email":"eve@example.com","verified_email":true,"name":"Eve","picture":"https://img/eve.png"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc, err := NewOAuthService(GoogleOAuthConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/oauth/google/callback",
		Endpoint:     &oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
	}, f.users, f.accounts, f.auth, nopLogger{})
	require.NoError(t, err)

	_, err = svc.HandleCallback(ctx, "forged", "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	loginURL, err := svc.LoginURL()
	require.NoError(t, err)
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	res, err := svc.HandleCallback(ctx, state, "code")
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", res.User.Email)
	assert.True(t, res.User.IsVerified())

	acct, err := f.accounts.FindByProvider(ctx, domain.ProviderGoogle, "g-42")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, acct.UserID)

	// state is single use
	_, err = svc.HandleCallback(ctx, state, "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	// a second sign-in reuses the linked user
	loginURL, _ = svc.LoginURL()
	parsed, _ = url.Parse(loginURL)
	again, err := svc.HandleCallback(ctx, parsed.Query().Get("state"), "code")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)
}
