package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/pagination"
)

// Repository encapsulates group activity persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an activity repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Insert appends an activity row to the group feed.
func (r *Repository) Insert(ctx context.Context, entry *models.GroupActivity) error {
	if entry == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

type listParams struct {
	GroupID uuid.UUID
	Cursor  *pagination.Cursor
	Limit   int
}

type activityRecord struct {
	ID         uuid.UUID `gorm:"column:id"`
	GroupID    uuid.UUID `gorm:"column:group_id"`
	UserID     uuid.UUID `gorm:"column:user_id"`
	Action     string    `gorm:"column:action"`
	MovieTitle *string   `gorm:"column:movie_title"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UserName   *string   `gorm:"column:user_name"`
	UserAvatar *string   `gorm:"column:user_avatar"`
}

// List returns a page of the group feed, newest first, plus the cursor for the next page.
func (r *Repository) List(ctx context.Context, params listParams) ([]activityRecord, *pagination.Cursor, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Table("group_activities ga").
		Select("ga.id, ga.group_id, ga.user_id, ga.action, ga.movie_title, ga.created_at, p.full_name AS user_name, p.avatar_url AS user_avatar").
		Joins("JOIN profiles p ON p.id = ga.user_id").
		Where("ga.group_id = ?", params.GroupID)

	if params.Cursor != nil {
		query = query.Where("(ga.created_at < ?) OR (ga.created_at = ? AND ga.id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	query = query.Order("ga.created_at DESC").Order("ga.id DESC").Limit(normalizedLimit + 1)

	var records []activityRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		next = &pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}
	}

	return records, next, nil
}
