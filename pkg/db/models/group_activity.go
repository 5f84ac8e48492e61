package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// GroupActivity is an append-only audit entry for the group feed.
type GroupActivity struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	GroupID    uuid.UUID            `gorm:"column:group_id;type:uuid;not null;index:group_activities_group_id_idx"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	Action     enums.ActivityAction `gorm:"column:action;type:text;not null"`
	MovieTitle *string              `gorm:"column:movie_title;type:text"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
