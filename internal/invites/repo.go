package invites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
)

// Repository encapsulates invite link persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an invite repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new invite link.
func (r *Repository) Create(ctx context.Context, invite *models.InviteLink) error {
	if invite == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(invite).Error
}

// FindByCode loads an invite by its code.
func (r *Repository) FindByCode(ctx context.Context, code string) (models.InviteLink, error) {
	var invite models.InviteLink
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).
		Error
	return invite, err
}

type inviteGroupRecord struct {
	Code             string     `gorm:"column:code"`
	GroupID          uuid.UUID  `gorm:"column:group_id"`
	GroupName        string     `gorm:"column:group_name"`
	GroupDescription *string    `gorm:"column:group_description"`
	MemberCount      int        `gorm:"column:member_count"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
	MaxUses          *int       `gorm:"column:max_uses"`
	UsesCount        int        `gorm:"column:uses_count"`
}

// FindByCodeWithGroup loads an invite plus the group details shown on the join page.
func (r *Repository) FindByCodeWithGroup(ctx context.Context, code string) (inviteGroupRecord, error) {
	var record inviteGroupRecord
	err := r.db.WithContext(ctx).
		Table("invite_links il").
		Select(`il.code, il.group_id, il.expires_at, il.max_uses, il.uses_count,
g.name AS group_name, g.description AS group_description,
(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count`).
		Joins("JOIN groups g ON g.id = il.group_id").
		Where("il.code = ?", code).
		Take(&record).
		Error
	return record, err
}

// ListForGroup returns the invites minted for a group, newest first.
func (r *Repository) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]models.InviteLink, error) {
	var invites []models.InviteLink
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&invites).
		Error
	return invites, err
}

// Delete removes an invite if it belongs to the group.
func (r *Repository) Delete(ctx context.Context, groupID, inviteID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", inviteID, groupID).
		Delete(&models.InviteLink{})
	return result.RowsAffected > 0, result.Error
}

// IncrementUses bumps the use counter, refusing once the cap is reached. The
// WHERE guard makes the increment safe under concurrent accepts.
func (r *Repository) IncrementUses(ctx context.Context, inviteID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InviteLink{}).
		Where("id = ? AND (max_uses IS NULL OR uses_count < max_uses)", inviteID).
		Update("uses_count", gorm.Expr("uses_count + 1"))
	return result.RowsAffected > 0, result.Error
}
