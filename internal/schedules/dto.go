package schedules

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// CreateScheduleInput carries the payload for adding a title to a group watchlist.
type CreateScheduleInput struct {
	MovieID       int64           `json:"movie_id" validate:"required,gt=0"`
	MovieTitle    string          `json:"movie_title" validate:"required,max=300"`
	MoviePoster   *string         `json:"movie_poster" validate:"omitempty,max=500"`
	MovieOverview *string         `json:"movie_overview" validate:"omitempty,max=2000"`
	MediaType     enums.MediaType `json:"media_type" validate:"omitempty"`
	GenreIDs      []int64         `json:"genre_ids" validate:"omitempty,max=20"`
	ReleaseDate   *string         `json:"release_date" validate:"omitempty,max=10"`
	FirstAirDate  *string         `json:"first_air_date" validate:"omitempty,max=10"`
	ScheduledDate *time.Time      `json:"scheduled_date"`
}

// SetDateInput carries the payload for scheduling an existing entry.
type SetDateInput struct {
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// ToggleInterestInput carries the thumbs up/down payload.
type ToggleInterestInput struct {
	VoteType enums.VoteType `json:"vote_type" validate:"required,oneof=-1 1"`
}

// ScheduleDTO is the public representation of a watchlist entry, scoped to the
// requesting member.
type ScheduleDTO struct {
	ID            uuid.UUID       `json:"id"`
	GroupID       uuid.UUID       `json:"group_id"`
	UserID        uuid.UUID       `json:"user_id"`
	MovieID       int64           `json:"movie_id"`
	MovieTitle    string          `json:"movie_title"`
	MoviePoster   *string         `json:"movie_poster,omitempty"`
	MovieOverview *string         `json:"movie_overview,omitempty"`
	ScheduledDate *time.Time      `json:"scheduled_date,omitempty"`
	ReleaseDate   *string         `json:"release_date,omitempty"`
	FirstAirDate  *string         `json:"first_air_date,omitempty"`
	MediaType     enums.MediaType `json:"media_type"`
	Watched       bool            `json:"watched"`
	Genres        []string        `json:"genres"`
	ReleaseYear   *int            `json:"release_year,omitempty"`
	VoteCount     int             `json:"vote_count"`
	Voted         bool            `json:"voted"`
	InterestScore int             `json:"interest_score"`
	MyInterest    *int            `json:"my_interest,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// VoteStateDTO reports the caller's vote state after a toggle.
type VoteStateDTO struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Voted      bool      `json:"voted"`
	VoteCount  int       `json:"vote_count"`
}

// InterestStateDTO reports the caller's interest state after a toggle.
type InterestStateDTO struct {
	ScheduleID    uuid.UUID `json:"schedule_id"`
	MyInterest    *int      `json:"my_interest,omitempty"`
	InterestScore int       `json:"interest_score"`
}

func toDTO(m models.GroupSchedule) ScheduleDTO {
	genres := make([]string, len(m.Genres))
	copy(genres, m.Genres)

	return ScheduleDTO{
		ID:            m.ID,
		GroupID:       m.GroupID,
		UserID:        m.UserID,
		MovieID:       m.MovieID,
		MovieTitle:    m.MovieTitle,
		MoviePoster:   m.MoviePoster,
		MovieOverview: m.MovieOverview,
		ScheduledDate: m.ScheduledDate,
		ReleaseDate:   m.ReleaseDate,
		FirstAirDate:  m.FirstAirDate,
		MediaType:     m.MediaType,
		Watched:       m.Watched,
		Genres:        genres,
		ReleaseYear:   m.ReleaseYear,
		CreatedAt:     m.CreatedAt,
	}
}
