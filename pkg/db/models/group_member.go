package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// GroupMember links a user with a group and captures their role.
type GroupMember struct {
	ID       uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	GroupID  uuid.UUID        `gorm:"column:group_id;type:uuid;not null;uniqueIndex:group_members_group_user_key"`
	UserID   uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:group_members_group_user_key"`
	Role     enums.MemberRole `gorm:"column:role;type:text;not null"`
	JoinedAt time.Time        `gorm:"column:joined_at;autoCreateTime"`
}
