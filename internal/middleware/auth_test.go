// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/callboard/internal/authz"
	"github.com/carterperez-dev/templates/callboard/internal/core"
)

type fakeVerifier map[string]*AccessTokenClaims

func (f fakeVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	switch token {
	case "expired":
		return nil, fmt.Errorf("verify: %w", core.ErrTokenExpired)
	case "revoked":
		return nil, fmt.Errorf("verify: %w", core.ErrTokenRevoked)
	case "redis-down":
		return nil, core.NewAppError(assert.AnError, "token store unavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
	}
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

var verifier = fakeVerifier{
	"user-token":  {UserID: "u-1", Role: "user", JTI: "j-1"},
	"admin-token": {UserID: "a-1", Role: authz.RoleAdmin, JTI: "j-2"},
}

// echoPrincipal writes the principal it sees, or "anonymous".
var echoPrincipal = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())
	if p == nil {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(p.UserID + "/" + p.Role))
})

func request(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(verifier)(echoPrincipal)

	tests := []struct {
		name     string
		token    string
		status   int
		wantBody string
		wantCode string
	}{
		{"valid", "user-token", http.StatusOK, "u-1/user", ""},
		{"missing", "", http.StatusUnauthorized, "", "UNAUTHORIZED"},
		{"invalid", "garbage", http.StatusUnauthorized, "", "TOKEN_INVALID"},
		{"expired", "expired", http.StatusUnauthorized, "", "TOKEN_EXPIRED"},
		{"revoked", "revoked", http.StatusUnauthorized, "", "TOKEN_REVOKED"},
		{"store down", "redis-down", http.StatusServiceUnavailable, "", "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(h, tt.token)
			require.Equal(t, tt.status, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(verifier)(echoPrincipal)

	rec := request(h, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = request(h, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a-1/admin", rec.Body.String())

	rec = request(h, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticator(verifier)(RequireAdmin(echoPrincipal))

	assert.Equal(t, http.StatusForbidden, request(h, "user-token").Code)
	assert.Equal(t, http.StatusOK, request(h, "admin-token").Code)

	bare := RequireAdmin(echoPrincipal)
	assert.Equal(t, http.StatusUnauthorized, request(bare, "").Code)
}

func TestClaimsInContext(t *testing.T) {
	var got *AccessTokenClaims
	h := Authenticator(verifier)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))

	request(h, "user-token")
	require.NotNil(t, got)
	assert.Equal(t, "j-1", got.JTI)
	assert.Empty(t, GetUserID(context.Background()))
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}
