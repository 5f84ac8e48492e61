package groups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
)

// Repository encapsulates group and membership persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a group repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new group row.
func (r *Repository) Create(ctx context.Context, group *models.Group) error {
	if group == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(group).Error
}

// FindByID loads a group by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&group).
		Error
	return group, err
}

type groupRecord struct {
	ID          uuid.UUID `gorm:"column:id"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	CreatedBy   uuid.UUID `gorm:"column:created_by"`
	Role        string    `gorm:"column:role"`
	MemberCount int       `gorm:"column:member_count"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// ListForUser returns every group the user belongs to, newest first, with the
// caller's role and the current member count.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]groupRecord, error) {
	var records []groupRecord
	err := r.db.WithContext(ctx).
		Table("groups g").
		Select(`g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at, gm.role,
(SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS member_count`).
		Joins("JOIN group_members gm ON gm.group_id = g.id").
		Where("gm.user_id = ?", userID).
		Order("g.created_at DESC").
		Scan(&records).
		Error
	return records, err
}

// Update applies the provided column updates and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (models.Group, error) {
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		result := r.db.WithContext(ctx).
			Model(&models.Group{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return models.Group{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Group{}, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the group. Members, schedules, invites, and activity cascade at
// the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Group{})
	return result.RowsAffected > 0, result.Error
}

// AddMember inserts a membership row.
func (r *Repository) AddMember(ctx context.Context, member *models.GroupMember) error {
	if member == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember loads the membership row for a user in a group.
func (r *Repository) FindMember(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).
		Error
	return member, err
}

// RemoveMember deletes the membership row if it exists.
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	return result.RowsAffected > 0, result.Error
}

type memberRecord struct {
	ID        uuid.UUID `gorm:"column:id"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	Role      string    `gorm:"column:role"`
	FullName  *string   `gorm:"column:full_name"`
	Email     string    `gorm:"column:email"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	JoinedAt  time.Time `gorm:"column:joined_at"`
}

// ListMembers returns the members of a group with their profile details, oldest first.
func (r *Repository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]memberRecord, error) {
	var records []memberRecord
	err := r.db.WithContext(ctx).
		Table("group_members gm").
		Select("gm.id, gm.user_id, gm.role, gm.joined_at, p.full_name, p.email, p.avatar_url").
		Joins("JOIN profiles p ON p.id = gm.user_id").
		Where("gm.group_id = ?", groupID).
		Order("gm.joined_at ASC").
		Scan(&records).
		Error
	return records, err
}

// CountMembers returns the membership count for a group.
func (r *Repository) CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).
		Error
	return count, err
}
