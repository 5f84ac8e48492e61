package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/pagination"
)

// Entry describes a feed event to record.
type Entry struct {
	GroupID    uuid.UUID
	UserID     uuid.UUID
	Action     enums.ActivityAction
	MovieTitle *string
}

// ListParams configures pagination for a group feed.
type ListParams struct {
	GroupID uuid.UUID
	Cursor  string
	Limit   int
}

// ActivityDTO is the public representation of one feed event.
type ActivityDTO struct {
	ID         uuid.UUID            `json:"id"`
	GroupID    uuid.UUID            `json:"group_id"`
	UserID     uuid.UUID            `json:"user_id"`
	Action     enums.ActivityAction `json:"action"`
	MovieTitle *string              `json:"movie_title,omitempty"`
	UserName   *string              `json:"user_name,omitempty"`
	UserAvatar *string              `json:"user_avatar,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// FeedDTO wraps a page of events and the cursor for the next page.
type FeedDTO struct {
	Items  []ActivityDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

// Service exposes the group activity feed.
type Service interface {
	List(ctx context.Context, params ListParams) (FeedDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds an activity service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (FeedDTO, error) {
	if params.GroupID == uuid.Nil {
		return FeedDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}

	query := listParams{
		GroupID: params.GroupID,
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return FeedDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	records, next, err := s.repo.List(ctx, query)
	if err != nil {
		return FeedDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}

	items := make([]ActivityDTO, 0, len(records))
	for _, record := range records {
		items = append(items, ActivityDTO{
			ID:         record.ID,
			GroupID:    record.GroupID,
			UserID:     record.UserID,
			Action:     enums.ActivityAction(record.Action),
			MovieTitle: record.MovieTitle,
			UserName:   record.UserName,
			UserAvatar: record.UserAvatar,
			CreatedAt:  record.CreatedAt,
		})
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return FeedDTO{
		Items:  items,
		Cursor: cursor,
	}, nil
}

// Record appends a feed event using the provided DB handle so callers can include
// it in their own transaction.
func Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	row := models.GroupActivity{
		GroupID:    entry.GroupID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		MovieTitle: entry.MovieTitle,
	}
	return NewRepository(tx).Insert(ctx, &row)
}
