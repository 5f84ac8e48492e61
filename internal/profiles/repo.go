package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
)

// Repository encapsulates profile persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profile repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile row.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return gorm.ErrInvalidValue
	}
	profile.Email = NormalizeEmail(profile.Email)
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID loads a profile by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).
		Error
	return profile, err
}

// FindByEmail loads a profile by its normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&profile).
		Error
	return profile, err
}

// TouchLastLogin stamps the last successful login time.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": at,
			"updated_at":    at,
		}).
		Error
}

// Update applies the provided mutable fields and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (models.Profile, error) {
	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		result := r.db.WithContext(ctx).
			Model(&models.Profile{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return models.Profile{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Profile{}, gorm.ErrRecordNotFound
		}
	}

	return r.FindByID(ctx, id)
}

// NormalizeEmail lowercases and trims the address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
