package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/watchcrew/watchcrew-backend/pkg/auth"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
)

type fakeSessionChecker struct {
	sessions map[string]bool
	err      error
}

func (f *fakeSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.sessions[accessID], nil
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "watchcrew-test",
		ExpirationMinutes: 15,
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID, jti string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(authTestConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "sam@example.com",
		JTI:    jti,
	})
	require.NoError(t, err)
	return token
}

func runAuth(t *testing.T, checker *fakeSessionChecker, authorization string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	handler := Auth(authTestConfig(), checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest("GET", "/api/v1/profiles/me", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w, captured
}

func TestAuthSeedsContext(t *testing.T) {
	userID := uuid.New()
	checker := &fakeSessionChecker{sessions: map[string]bool{"session-1": true}}
	token := mintTestToken(t, userID, "session-1")

	w, captured := runAuth(t, checker, "Bearer "+token)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, captured)
	require.Equal(t, userID.String(), UserIDFromContext(captured.Context()))
	require.Equal(t, "session-1", AccessIDFromContext(captured.Context()))
}

func TestAuthMissingHeader(t *testing.T) {
	w, captured := runAuth(t, &fakeSessionChecker{}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, captured)

	w, captured = runAuth(t, &fakeSessionChecker{}, "Bearer   ")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, captured)
}

func TestAuthRejectsBadToken(t *testing.T) {
	w, captured := runAuth(t, &fakeSessionChecker{}, "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, captured)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token := mintTestToken(t, uuid.New(), "revoked-session")
	checker := &fakeSessionChecker{sessions: map[string]bool{}}

	w, captured := runAuth(t, checker, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, captured)
}

func TestAuthAcceptsRawToken(t *testing.T) {
	// tokens without the Bearer prefix are accepted as-is
	token := mintTestToken(t, uuid.New(), "session-1")
	checker := &fakeSessionChecker{sessions: map[string]bool{"session-1": true}}

	w, captured := runAuth(t, checker, token)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, captured)
}
