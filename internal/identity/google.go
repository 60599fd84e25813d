// Package identity verifies Google ID tokens.
package identity

import (
	"alcyxob/fitness-social/internal/domain"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var (
	// ErrRejected means the provider refused the token: bad signature,
	// expired, wrong audience or missing claims.
	ErrRejected = errors.New("identity token rejected")
	// ErrUnavailable means the provider could not be reached.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Validator is the subset of *idtoken.Validator in use.
type Validator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

type GoogleVerifier struct {
	validator Validator
	clientID  string
}

// NewGoogleVerifier builds a verifier that checks tokens against Google's
// published certificates, fetched with httpClient.
func NewGoogleVerifier(ctx context.Context, clientID string, httpClient *http.Client) (*GoogleVerifier, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	if clientID == "" {
		log.Warnln("google client id is empty, id token audience will not be checked")
	}
	return NewGoogleVerifierWithValidator(validator, clientID), nil
}

func NewGoogleVerifierWithValidator(validator Validator, clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		validator: validator,
		clientID:  clientID,
	}
}

// Verify validates idToken and extracts the caller's identity.
// Errors match ErrRejected or ErrUnavailable.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*domain.GoogleIdentity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrRejected)
	}

	payload, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	identity := &domain.GoogleIdentity{
		Subject:       payload.Subject,
		Email:         stringClaim(payload.Claims, "email"),
		EmailVerified: boolClaim(payload.Claims, "email_verified"),
		GivenName:     stringClaim(payload.Claims, "given_name"),
		FamilyName:    stringClaim(payload.Claims, "family_name"),
		PictureURL:    stringClaim(payload.Claims, "picture"),
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: token has no subject or email", ErrRejected)
	}
	return identity, nil
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// idtoken reports failed certificate downloads only as text.
	return strings.Contains(err.Error(), "unable to retrieve cert")
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// email_verified arrives as a bool or, from some issuers, the string "true".
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
