package identity

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type fakeValidator struct {
	payload  *idtoken.Payload
	err      error
	audience string
}

func (f *fakeValidator) Validate(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
	f.audience = audience
	return f.payload, f.err
}

func TestGoogleVerifier_Verify(t *testing.T) {
	validator := &fakeValidator{
		payload: &idtoken.Payload{
			Subject: "1234567890",
			Claims: map[string]interface{}{
				"email":          "ada@example.com",
				"email_verified": "true",
				"given_name":     "Ada",
				"family_name":    "Lovelace",
				"picture":        "https://example.com/ada.png",
			},
		},
	}
	verifier := NewGoogleVerifierWithValidator(validator, "client-id")

	identity, err := verifier.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "client-id", validator.audience)
	assert.Equal(t, "1234567890", identity.Subject)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Ada", identity.GivenName)
	assert.Equal(t, "Lovelace", identity.FamilyName)
	assert.Equal(t, "https://example.com/ada.png", identity.PictureURL)
}

func TestGoogleVerifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		payload *idtoken.Payload
		err     error
		want    error
	}{
		{name: "empty token", token: "", want: ErrRejected},
		{name: "bad signature", token: "t", err: errors.New("idtoken: invalid token"), want: ErrRejected},
		{name: "network", token: "t", err: &url.Error{Op: "Get", URL: "https://www.googleapis.com", Err: errors.New("dial tcp: timeout")}, want: ErrUnavailable},
		{name: "cert status", token: "t", err: errors.New("idtoken: unable to retrieve cert, got status code 503"), want: ErrUnavailable},
		{name: "deadline", token: "t", err: context.DeadlineExceeded, want: ErrUnavailable},
		{name: "missing email", token: "t", payload: &idtoken.Payload{Subject: "1", Claims: map[string]interface{}{}}, want: ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := NewGoogleVerifierWithValidator(&fakeValidator{payload: tt.payload, err: tt.err}, "")
			_, err := verifier.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
