package auth

import (
	"github.com/watchcrew/watchcrew-backend/internal/profiles"
)

// RegisterInput carries the signup payload.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

// LoginInput carries the credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the expired access token plus the refresh token issued alongside it.
type RefreshInput struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPairDTO is the issued credential pair.
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResultDTO bundles the authenticated profile with its tokens.
type AuthResultDTO struct {
	Profile profiles.ProfileDTO `json:"profile"`
	Tokens  TokenPairDTO        `json:"tokens"`
}
