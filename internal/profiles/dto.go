package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
)

// ProfileDTO is the public representation of a profile. The password hash never leaves the package.
type ProfileDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    *string    `json:"full_name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave the column untouched.
type UpdateProfileInput struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// ToDTO maps the persistence model to its API shape.
func ToDTO(m models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          m.ID,
		Email:       m.Email,
		FullName:    m.FullName,
		AvatarURL:   m.AvatarURL,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
