package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds denormalized user display data, upserted on auth events.
type Profile struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FullName     *string    `gorm:"column:full_name"`
	AvatarURL    *string    `gorm:"column:avatar_url"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
