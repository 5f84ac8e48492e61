package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleVote is a boolean heart reaction, one row per user per schedule.
type ScheduleVote struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ScheduleID uuid.UUID `gorm:"column:schedule_id;type:uuid;not null;index:schedule_votes_schedule_id_idx;uniqueIndex:schedule_votes_schedule_user_key"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:schedule_votes_schedule_user_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
