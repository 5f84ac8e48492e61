package models

import (
	"time"

	"github.com/google/uuid"
)

// InviteLink is a capability token granting group membership.
type InviteLink struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index:invite_links_group_id_idx"`
	Code      string     `gorm:"column:code;type:text;not null;uniqueIndex:invite_links_code_key"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	MaxUses   *int       `gorm:"column:max_uses"`
	UsesCount int        `gorm:"column:uses_count;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
