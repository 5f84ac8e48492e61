package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// GroupSchedule is one catalog title added to a group's watchlist, optionally
// with a planned watch date.
type GroupSchedule struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	GroupID       uuid.UUID       `gorm:"column:group_id;type:uuid;not null;index:group_schedules_group_id_idx;uniqueIndex:group_schedules_group_movie_key"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	MovieID       int64           `gorm:"column:movie_id;not null;uniqueIndex:group_schedules_group_movie_key"`
	MovieTitle    string          `gorm:"column:movie_title;type:text;not null"`
	MoviePoster   *string         `gorm:"column:movie_poster;type:text"`
	MovieOverview *string         `gorm:"column:movie_overview;type:text"`
	ScheduledDate *time.Time      `gorm:"column:scheduled_date"`
	ReleaseDate   *string         `gorm:"column:release_date;type:text"`
	FirstAirDate  *string         `gorm:"column:first_air_date;type:text"`
	MediaType     enums.MediaType `gorm:"column:media_type;type:text;not null;default:'movie'"`
	Watched       bool            `gorm:"column:watched;not null;default:false"`
	Genres        pq.StringArray  `gorm:"column:genres;type:text[]"`
	ReleaseYear   *int            `gorm:"column:release_year"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
