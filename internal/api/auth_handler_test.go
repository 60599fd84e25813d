package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := ts.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestGoogleLogin_CreatesUserAndSession(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "jane.doe@example.com")
	require.NotEmpty(t, token)

	rr := ts.do(t, http.MethodGet, "/api/user/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var user UserResponse
	decode(t, rr, &user)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Equal(t, "jane.doe", user.Username)
	assert.Equal(t, "Test", user.FirstName)
	assert.NotContains(t, rr.Body.String(), "passwordHash")
}

func TestUpdateCurrentUser(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "jane.doe@example.com")

	rr := ts.do(t, http.MethodGet, "/api/user/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var before UserResponse
	decode(t, rr, &before)

	rr = ts.do(t, http.MethodPut, "/api/user/", map[string]string{"firstName": " Janet "}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var after UserResponse
	decode(t, rr, &after)
	assert.Equal(t, "Janet", after.FirstName)
	assert.Equal(t, before.LastName, after.LastName)
	assert.Equal(t, before.Email, after.Email)

	rr = ts.do(t, http.MethodGet, "/api/user/", nil, token)
	decode(t, rr, &after)
	assert.Equal(t, "Janet", after.FirstName)

	rr = ts.do(t, http.MethodPut, "/api/user/", map[string]string{"lastName": ""}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &after)
	assert.Equal(t, "Janet", after.FirstName)
	assert.Empty(t, after.LastName)

	rr = ts.do(t, http.MethodPut, "/api/user/", map[string]string{"firstName": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGoogleLogin_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/google-login/", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeValidationFailed, errorCode(t, rr))

	rr = ts.do(t, http.MethodPost, "/api/google-login/", GoogleLoginRequest{Token: "forged"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, CodeInvalidToken, errorCode(t, rr))

	ts.verifier.down = true
	rr = ts.do(t, http.MethodPost, "/api/google-login/", GoogleLoginRequest{Token: "anything"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, CodeUpstreamUnavailable, errorCode(t, rr))
}

func TestAuthMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodGet, "/api/user/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, CodeUnauthorized, errorCode(t, rr))

	rr = ts.do(t, http.MethodGet, "/api/user/", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, CodeUnauthorized, errorCode(t, rr))
}

func TestLogout_InvalidatesToken(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "sam@example.com")

	rr := ts.do(t, http.MethodPost, "/api/logout/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/api/user/", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Logging out twice is harmless.
	rr = ts.do(t, http.MethodPost, "/api/logout/", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/logout/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterLoginAndRenew(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/register/", RegisterRequest{
		Username: "lifter",
		Email:    "Lifter@Example.com",
		Password: "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/register/", RegisterRequest{
		Username: "lifter2",
		Email:    "lifter@example.com",
		Password: "correct horse",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, CodeConflict, errorCode(t, rr))

	rr = ts.do(t, http.MethodPost, "/api/login/", LoginRequest{Email: "lifter@example.com", Password: "wrong password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/login/", LoginRequest{Email: "lifter@example.com", Password: "correct horse"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var login LoginResponse
	decode(t, rr, &login)
	require.NotEmpty(t, login.UpdateToken)

	rr = ts.do(t, http.MethodPost, "/api/session/", RenewSessionRequest{UpdateToken: login.UpdateToken}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var renewed LoginResponse
	decode(t, rr, &renewed)
	assert.NotEqual(t, login.SessionToken, renewed.SessionToken)

	// The update token is single use.
	rr = ts.do(t, http.MethodPost, "/api/session/", RenewSessionRequest{UpdateToken: login.UpdateToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, CodeInvalidToken, errorCode(t, rr))
}

func TestLoginRoutes_RateLimited(t *testing.T) {
	ts := newTestServer(t, &fakeLimiter{n: 2})

	body := LoginRequest{Email: "nobody@example.com", Password: "whatever1"}
	for i := 0; i < 2; i++ {
		rr := ts.do(t, http.MethodPost, "/api/login/", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := ts.do(t, http.MethodPost, "/api/login/", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, CodeRateLimited, errorCode(t, rr))
	assert.Equal(t, "31", rr.Header().Get("Retry-After"))

	// Other routes keep their own budget.
	rr = ts.do(t, http.MethodPost, "/api/register/", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
