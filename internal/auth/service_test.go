package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	pkgauth "github.com/watchcrew/watchcrew-backend/pkg/auth"
	"github.com/watchcrew/watchcrew-backend/pkg/auth/session"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

type stubProfileStore struct {
	byEmail map[string]models.Profile
	touched []uuid.UUID
}

func newStubProfileStore() *stubProfileStore {
	return &stubProfileStore{byEmail: make(map[string]models.Profile)}
}

func (s *stubProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	email := profiles.NormalizeEmail(profile.Email)
	if _, exists := s.byEmail[email]; exists {
		return errors.New("UNIQUE constraint failed: profiles.email")
	}
	profile.ID = uuid.New()
	profile.Email = email
	profile.CreatedAt = time.Now().UTC()
	s.byEmail[email] = *profile
	return nil
}

func (s *stubProfileStore) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	profile, ok := s.byEmail[profiles.NormalizeEmail(email)]
	if !ok {
		return models.Profile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (s *stubProfileStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.touched = append(s.touched, id)
	return nil
}

type stubSessionManager struct {
	refreshByAccessID map[string]string
	nextToken         int
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{refreshByAccessID: make(map[string]string)}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.nextToken++
	token := fmt.Sprintf("refresh-%d", s.nextToken)
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := s.refreshByAccessID[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newAccessID := session.NewAccessID()
	token, err := s.Generate(ctx, newAccessID)
	return newAccessID, token, err
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.refreshByAccessID, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "watchcrew-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func buildAuthService(t *testing.T) (Service, *stubProfileStore, *stubSessionManager) {
	t.Helper()
	store := newStubProfileStore()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		ProfileRepo: store,
		Sessions:    sessions,
		JWT:         testJWTConfig(),
		Password:    testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc, store, sessions
}

func requireAuthCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected code for %v", err)
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, store, sessions := buildAuthService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "New@Example.com",
		Password: "movie-night",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", result.Profile.Email)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)
	require.Equal(t, "Bearer", result.Tokens.TokenType)
	require.Equal(t, 15*60, result.Tokens.ExpiresIn)

	// the stored hash must never be the raw password
	stored := store.byEmail["new@example.com"]
	require.NotEqual(t, "movie-night", stored.PasswordHash)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.Profile.ID, claims.UserID)
	require.Contains(t, sessions.refreshByAccessID, claims.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := buildAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "dup@example.com", Password: "movie-night"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "dup@example.com", Password: "movie-night"})
	requireAuthCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, store, _ := buildAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "sam@example.com", Password: "movie-night"})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{Email: "sam@example.com", Password: "movie-night"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotNil(t, result.Profile.LastLoginAt)
	require.Len(t, store.touched, 1)

	_, err = svc.Login(context.Background(), LoginInput{Email: "sam@example.com", Password: "wrong-password"})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "movie-night"})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := buildAuthService(t)

	registered, err := svc.Register(context.Background(), RegisterInput{Email: "sam@example.com", Password: "movie-night"})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  registered.Tokens.AccessToken,
		RefreshToken: registered.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, registered.Tokens.RefreshToken, pair.RefreshToken)

	// the old refresh token is burned by the rotation
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  registered.Tokens.AccessToken,
		RefreshToken: registered.Tokens.RefreshToken,
	})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)

	// the new pair stays usable
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.Profile.ID, claims.UserID)
	require.Contains(t, sessions.refreshByAccessID, claims.ID)
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	svc, _, _ := buildAuthService(t)

	forged, err := pkgauth.MintAccessToken(config.JWTConfig{
		Secret:            "other-secret",
		Issuer:            "watchcrew-test",
		ExpirationMinutes: 15,
	}, time.Now().UTC(), pkgauth.AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshInput{AccessToken: forged, RefreshToken: "whatever"})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := buildAuthService(t)

	registered, err := svc.Register(context.Background(), RegisterInput{Email: "sam@example.com", Password: "movie-night"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), registered.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	require.NotContains(t, sessions.refreshByAccessID, claims.ID)

	err = svc.Logout(context.Background(), "")
	requireAuthCode(t, err, pkgerrors.CodeValidation)
}
