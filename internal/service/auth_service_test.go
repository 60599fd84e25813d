package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthService_ExchangeGoogleToken_NewUser(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.add("tok", &domain.GoogleIdentity{
		Subject:       "sub-1",
		Email:         "grace.hopper@example.com",
		EmailVerified: true,
	})

	result, err := env.authService.ExchangeGoogleToken(context.Background(), "tok", ProfileNames{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, env.now.Add(time.Hour), result.ExpiresAt)
	assert.Equal(t, "grace.hopper", result.User.Username)
	assert.Equal(t, "Grace", result.User.FirstName)
	assert.Equal(t, "Hopper", result.User.LastName)

	principal, err := env.authService.Authenticate(context.Background(), result.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, principal.UserID)
}

func TestAuthService_ExchangeGoogleToken_UpdatesExistingUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.login(t, "ada@example.com")

	env.verifier.add("renamed", &domain.GoogleIdentity{
		Subject:       "sub-ada@example.com",
		Email:         "ada@example.com",
		EmailVerified: true,
		GivenName:     "Augusta Ada",
		FamilyName:    "King",
		PictureURL:    "https://example.com/ada.png",
	})
	second, err := env.authService.ExchangeGoogleToken(ctx, "renamed", ProfileNames{})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	user, err := env.authService.GetUser(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta Ada", user.FirstName)
	assert.Equal(t, "King", user.LastName)
	assert.Equal(t, "https://example.com/ada.png", user.PictureURL)
}

func TestAuthService_ExchangeGoogleToken_MatchesRegisteredEmailIgnoringCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered, err := env.authService.Register(ctx, RegisterInput{
		Username: "grace",
		Email:    "grace@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	env.verifier.add("tok", &domain.GoogleIdentity{
		Subject:       "sub-grace",
		Email:         "Grace@Example.COM",
		EmailVerified: true,
	})
	result, err := env.authService.ExchangeGoogleToken(ctx, "tok", ProfileNames{})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.Equal(t, "grace@example.com", result.User.Email)

	env.verifier.add("new", &domain.GoogleIdentity{Subject: "sub-alan", Email: "Alan@Example.com", EmailVerified: true})
	created, err := env.authService.ExchangeGoogleToken(ctx, "new", ProfileNames{})
	require.NoError(t, err)
	assert.Equal(t, "alan@example.com", created.User.Email)
	assert.Equal(t, "alan", created.User.Username)
}

func TestAuthService_ExchangeGoogleToken_UsernameCollision(t *testing.T) {
	env := newTestEnv(t)
	a := env.login(t, "sam@example.com")
	b := env.login(t, "sam@example.org")
	c := env.login(t, "sam@example.net")

	assert.Equal(t, "sam", a.User.Username)
	assert.Equal(t, "sam2", b.User.Username)
	assert.Equal(t, "sam3", c.User.Username)
}

func TestAuthService_ExchangeGoogleToken_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authService.ExchangeGoogleToken(ctx, "forged", ProfileNames{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	env.verifier.add("unverified", &domain.GoogleIdentity{Subject: "x", Email: "x@example.com"})
	_, err = env.authService.ExchangeGoogleToken(ctx, "unverified", ProfileNames{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	env.verifier.failures = 1
	_, err = env.authService.ExchangeGoogleToken(ctx, "anything", ProfileNames{})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestAuthService_ExchangeGoogleToken_RetriesOutage(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.users, env.sessions, env.verifier, AuthServiceConfig{
		JWTSecret: testJWTSecret,
		Retry:     RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond},
	})
	env.verifier.add("tok", &domain.GoogleIdentity{Subject: "s", Email: "lin@example.com", EmailVerified: true})
	env.verifier.failures = 2

	result, err := svc.ExchangeGoogleToken(context.Background(), "tok", ProfileNames{})
	require.NoError(t, err)
	assert.Equal(t, "lin", result.User.Username)
	assert.Equal(t, 3, env.verifier.calls)

	// Rejections are not retried.
	env.verifier.calls = 0
	_, err = svc.ExchangeGoogleToken(context.Background(), "bad", ProfileNames{})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 1, env.verifier.calls)
}

func TestAuthService_LogoutEndsOnlyThatSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phone := env.login(t, "ada@example.com")
	laptop := env.login(t, "ada@example.com")
	require.NotEqual(t, phone.SessionToken, laptop.SessionToken)

	require.NoError(t, env.authService.Logout(ctx, phone.SessionToken))

	_, err := env.authService.Authenticate(ctx, phone.SessionToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.authService.Authenticate(ctx, laptop.SessionToken)
	assert.NoError(t, err)

	// Logging out twice is fine.
	assert.NoError(t, env.authService.Logout(ctx, phone.SessionToken))
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := env.login(t, "ada@example.com")

	_, err := env.authService.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.authService.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := NewAuthService(env.users, env.sessions, env.verifier, AuthServiceConfig{JWTSecret: "another-secret"})
	_, err = other.Authenticate(ctx, result.SessionToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	env.now = env.now.Add(2 * time.Hour)
	_, err = env.authService.Authenticate(ctx, result.SessionToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RenewSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.login(t, "ada@example.com")

	env.now = env.now.Add(2 * time.Hour)
	renewed, err := env.authService.RenewSession(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, renewed.User.ID)
	assert.NotEqual(t, first.RefreshToken, renewed.RefreshToken)

	_, err = env.authService.Authenticate(ctx, renewed.SessionToken)
	assert.NoError(t, err)

	// The old refresh token is consumed.
	_, err = env.authService.RenewSession(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	env.now = env.now.Add(48 * time.Hour)
	_, err = env.authService.RenewSession(ctx, renewed.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// gatedSessions holds every GetByRefreshToken caller until all of them read
// the session, so their deletes race.
type gatedSessions struct {
	repository.SessionRepository
	readers sync.WaitGroup
}

func (g *gatedSessions) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	session, err := g.SessionRepository.GetByRefreshToken(ctx, refreshToken)
	g.readers.Done()
	g.readers.Wait()
	return session, err
}

func TestAuthService_RenewSession_ConcurrentUseOfOneToken(t *testing.T) {
	env := newTestEnv(t)
	first := env.login(t, "ada@example.com")

	const callers = 4
	gated := &gatedSessions{SessionRepository: env.sessions}
	gated.readers.Add(callers)
	svc := NewAuthService(env.users, gated, env.verifier, AuthServiceConfig{
		JWTSecret:  testJWTSecret,
		SessionTTL: time.Hour,
		RefreshTTL: 24 * time.Hour,
		Retry:      NoRetry(),
		Now:        func() time.Time { return env.now },
	})

	var renewed, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RenewSession(context.Background(), first.RefreshToken)
			switch {
			case err == nil:
				renewed.Add(1)
			case errors.Is(err, ErrInvalidToken):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), renewed.Load())
	assert.Equal(t, int32(callers-1), rejected.Load())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, err := env.authService.Register(ctx, RegisterInput{
		Username: "lifter",
		Email:    "Lifter@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "lifter@example.com", registered.User.Email)
	assert.NotEqual(t, "correct horse", registered.User.PasswordHash)

	_, err = env.authService.Register(ctx, RegisterInput{Username: "other", Email: "lifter@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = env.authService.Register(ctx, RegisterInput{Username: "lifter", Email: "new@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = env.authService.Register(ctx, RegisterInput{Username: "short", Email: "short@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.authService.Register(ctx, RegisterInput{Username: "bad", Email: "not-an-email", Password: "password1"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	loggedIn, err := env.authService.Login(ctx, "lifter@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = env.authService.Login(ctx, "lifter@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = env.authService.Login(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	// Google-only accounts cannot use the password route.
	env.login(t, "google.only@example.com")
	_, err = env.authService.Login(ctx, "google.only@example.com", "anything1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := env.login(t, "ada@example.com")

	first := "Augusta"
	user, err := env.authService.UpdateProfile(ctx, result.User.ID, ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", user.FirstName)
	assert.Equal(t, "User", user.LastName)

	stored, err := env.authService.GetUser(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", stored.FirstName)
	assert.Equal(t, "ada@example.com", stored.Email)

	_, err = env.authService.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{FirstName: &first})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
