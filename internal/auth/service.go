package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	pkgauth "github.com/watchcrew/watchcrew-backend/pkg/auth"
	"github.com/watchcrew/watchcrew-backend/pkg/auth/session"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/db"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/security"
)

// ProfileStore is the profile persistence surface the auth service needs.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SessionManager handles the refresh session lifecycle.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	ProfileRepo ProfileStore
	Sessions    SessionManager
	JWT         config.JWTConfig
	Password    config.PasswordConfig
}

// Service exposes registration, login, and token lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (AuthResultDTO, error)
	Login(ctx context.Context, input LoginInput) (AuthResultDTO, error)
	Refresh(ctx context.Context, input RefreshInput) (TokenPairDTO, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	profileRepo ProfileStore
	sessions    SessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt config is required")
	}
	return &service{
		profileRepo: params.ProfileRepo,
		sessions:    params.Sessions,
		jwtCfg:      params.JWT,
		passwordCfg: params.Password,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates a new profile and signs the caller in.
func (s *service) Register(ctx context.Context, input RegisterInput) (AuthResultDTO, error) {
	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	profile := models.Profile{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
	}
	if err := s.profileRepo.Create(ctx, &profile); err != nil {
		if db.IsUniqueViolation(err, "profiles_email_key") {
			return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}

	tokens, err := s.issueTokens(ctx, profile)
	if err != nil {
		return AuthResultDTO{}, err
	}

	return AuthResultDTO{
		Profile: profiles.ToDTO(profile),
		Tokens:  tokens,
	}, nil
}

// Login verifies the credentials and issues a fresh token pair.
func (s *service) Login(ctx context.Context, input LoginInput) (AuthResultDTO, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	ok, err := security.VerifyPassword(input.Password, profile.PasswordHash)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	loginAt := s.now()
	if err := s.profileRepo.TouchLastLogin(ctx, profile.ID, loginAt); err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	profile.LastLoginAt = &loginAt

	tokens, err := s.issueTokens(ctx, profile)
	if err != nil {
		return AuthResultDTO{}, err
	}

	return AuthResultDTO{
		Profile: profiles.ToDTO(profile),
		Tokens:  tokens,
	}, nil
}

// Refresh rotates the session behind the expired access token and mints a new pair.
func (s *service) Refresh(ctx context.Context, input RefreshInput) (TokenPairDTO, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, input.AccessToken)
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, refreshToken, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		JTI:    newAccessID,
	})
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return s.tokenPair(accessToken, refreshToken), nil
}

// Logout revokes the refresh session tied to the caller's access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, profile models.Profile) (TokenPairDTO, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: profile.ID,
		Email:  profile.Email,
		JTI:    accessID,
	})
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return s.tokenPair(accessToken, refreshToken), nil
}

func (s *service) tokenPair(accessToken, refreshToken string) TokenPairDTO {
	return TokenPairDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
	}
}
