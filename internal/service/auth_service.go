package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/identity"
	"alcyxob/fitness-social/internal/metrics"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "fitness-social"
	minPasswordLength = 8
	maxUsernameTries  = 50
)

// IdentityVerifier checks a Google ID token. Errors should match
// identity.ErrRejected or identity.ErrUnavailable.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.GoogleIdentity, error)
}

// LoginResult is what a client receives after any successful login.
type LoginResult struct {
	SessionToken string       `json:"sessionToken"`
	RefreshToken string       `json:"updateToken"`
	ExpiresAt    time.Time    `json:"sessionExpiration"`
	User         *domain.User `json:"user"`
}

// Principal identifies the caller behind a valid session token.
type Principal struct {
	UserID    primitive.ObjectID
	SessionID string
}

// ProfileNames are names supplied by the client, used when the ID token
// carries none.
type ProfileNames struct {
	FirstName string
	LastName  string
}

// ProfileUpdate holds the profile fields a user may edit.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	// ExchangeGoogleToken verifies a Google ID token and opens a new session.
	// Every exchange gets its own session; earlier ones stay valid.
	ExchangeGoogleToken(ctx context.Context, idToken string, fallback ProfileNames) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// RenewSession trades a refresh token for a new session. The old session
	// and its refresh token are invalidated.
	RenewSession(ctx context.Context, refreshToken string) (*LoginResult, error)
	// Logout invalidates the session behind sessionToken and nothing else.
	Logout(ctx context.Context, sessionToken string) error
	Authenticate(ctx context.Context, sessionToken string) (*Principal, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	// UpdateProfile changes the caller's names. Nil fields are left as they are.
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileUpdate) (*domain.User, error)
}

type AuthServiceConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	RefreshTTL time.Duration
	Retry      RetryPolicy
	Metrics    *metrics.Manager
	Now        func() time.Time
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	verifier    IdentityVerifier
	cfg         AuthServiceConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	verifier IdentityVerifier,
	cfg AuthServiceConfig,
) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL < cfg.SessionTTL {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		verifier:    verifier,
		cfg:         cfg,
	}
}

func (s *authService) ExchangeGoogleToken(ctx context.Context, idToken string, fallback ProfileNames) (*LoginResult, error) {
	if s.verifier == nil {
		return nil, upstreamError("google", errors.New("identity verifier not configured"))
	}

	googleIdentity, err := withRetry(ctx, s.cfg.Retry, s.cfg.Metrics, "google", func() (*domain.GoogleIdentity, error) {
		googleIdentity, err := s.verifier.Verify(ctx, idToken)
		if err != nil {
			if errors.Is(err, identity.ErrUnavailable) {
				return nil, upstreamError("google", err)
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return googleIdentity, nil
	})
	if err != nil {
		return nil, err
	}
	if !googleIdentity.EmailVerified {
		return nil, fmt.Errorf("%w: google email is not verified", ErrInvalidToken)
	}

	ctx = context.WithoutCancel(ctx)
	user, err := s.upsertGoogleUser(ctx, googleIdentity, fallback)
	if err != nil {
		return nil, err
	}
	log.Debugf("google login for user %s", user.Username)
	return s.issueSession(ctx, user)
}

// upsertGoogleUser finds the account by email, refreshing its profile, or
// creates it with the email's local part as username.
func (s *authService) upsertGoogleUser(ctx context.Context, googleIdentity *domain.GoogleIdentity, fallback ProfileNames) (*domain.User, error) {
	firstName := firstNonEmpty(googleIdentity.GivenName, fallback.FirstName)
	lastName := firstNonEmpty(googleIdentity.FamilyName, fallback.LastName)
	email := strings.ToLower(strings.TrimSpace(googleIdentity.Email))
	now := s.cfg.Now().UTC()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		user.FirstName = firstNonEmpty(firstName, user.FirstName)
		user.LastName = firstNonEmpty(lastName, user.LastName)
		user.PictureURL = firstNonEmpty(googleIdentity.PictureURL, user.PictureURL)
		user.GoogleID = googleIdentity.Subject
		user.LastLoginAt = &now
		if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
			return nil, upstreamError("user store", err)
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, upstreamError("user store", err)
	}

	username, err := s.freeUsername(ctx, domain.UsernameFromEmail(email))
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Username:    username,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		PictureURL:  googleIdentity.PictureURL,
		GoogleID:    googleIdentity.Subject,
		LastLoginAt: &now,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent first login created the account.
			existing, getErr := s.userRepo.GetByEmail(ctx, email)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, upstreamError("user store", err)
	}
	user.ID = userID
	log.Infof("created user %s from google login", username)
	return user, nil
}

// freeUsername returns base, or base with the first numeric suffix not taken.
func (s *authService) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxUsernameTries+1; i++ {
		_, err := s.userRepo.GetByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", upstreamError("user store", err)
		}
		candidate = base + strconv.Itoa(i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, validationError("username, email and password cannot be empty")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, validationError("invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, upstreamError("user store", err)
	}
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("%w: username %s is taken", ErrUserAlreadyExists, input.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, upstreamError("user store", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	now := s.cfg.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hashedPassword),
		LastLoginAt:  &now,
	}

	ctx = context.WithoutCancel(ctx)
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, upstreamError("user store", err)
	}
	user.ID = userID
	return s.issueSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, upstreamError("user store", err)
	}
	// Google-only accounts have no password to compare against.
	if !user.HasPassword() {
		return nil, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	ctx = context.WithoutCancel(ctx)
	now := s.cfg.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		log.Warnf("failed to record login time of user %s: %s", user.ID.Hex(), err)
	}
	return s.issueSession(ctx, user)
}

func (s *authService) RenewSession(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrInvalidToken)
	}
	ctx = context.WithoutCancel(ctx)

	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown refresh token", ErrInvalidToken)
		}
		return nil, upstreamError("session store", err)
	}
	// Deleting the session claims the refresh token.
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: refresh token already used", ErrInvalidToken)
		}
		return nil, upstreamError("session store", err)
	}
	if session.RefreshExpired(s.cfg.Now()) {
		return nil, fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	}

	user, err := s.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	claims, err := s.parseToken(sessionToken, true)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(context.WithoutCancel(ctx), claims.SessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return upstreamError("session store", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, sessionToken string) (*Principal, error) {
	claims, err := s.parseToken(sessionToken, false)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: session ended", ErrUnauthorized)
		}
		return nil, upstreamError("session store", err)
	}
	if session.Expired(s.cfg.Now()) || session.UserID.Hex() != claims.UserID {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	return &Principal{UserID: session.UserID, SessionID: session.ID}, nil
}

func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, upstreamError("user store", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if err := s.userRepo.UpdateProfile(context.WithoutCancel(ctx), user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, upstreamError("user store", err)
	}
	return user, nil
}

func (s *authService) issueSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	now := s.cfg.Now().UTC()
	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		RefreshToken:     uuid.NewString(),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.SessionTTL),
		RefreshExpiresAt: now.Add(s.cfg.RefreshTTL),
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, upstreamError("session store", err)
	}

	token, err := s.generateJWT(session)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	return &LoginResult{
		SessionToken: token,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         user,
	}, nil
}

// --- JWT Helper ---

// sessionClaims defines the structure of the session token payload.
type sessionClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(session *domain.Session) (string, error) {
	claims := &sessionClaims{
		UserID:    session.UserID.Hex(),
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.Hex(),
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// parseToken checks the signature and, unless allowExpired, the expiry.
// Logging out with an expired token is allowed.
func (s *authService) parseToken(tokenString string, allowExpired bool) (*sessionClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("%w: missing session token", ErrUnauthorized)
	}

	// Expiry is checked below against the service clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &sessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", ErrUnauthorized)
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: session token is missing claims", ErrUnauthorized)
	}
	if !allowExpired && claims.ExpiresAt != nil && !s.cfg.Now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: session token expired", ErrUnauthorized)
	}
	return claims, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
