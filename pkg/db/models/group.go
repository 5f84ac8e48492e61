package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named collection of users sharing a watchlist.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedBy   uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
