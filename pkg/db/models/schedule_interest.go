package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// ScheduleInterest is a signed thumbs up/down reaction, one row per user per
// schedule.
type ScheduleInterest struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ScheduleID uuid.UUID      `gorm:"column:schedule_id;type:uuid;not null;index:schedule_interests_schedule_id_idx;uniqueIndex:schedule_interests_schedule_user_key"`
	UserID     uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:schedule_interests_schedule_user_key"`
	VoteType   enums.VoteType `gorm:"column:vote_type;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
