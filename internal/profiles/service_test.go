package profiles

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/migrate"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	for _, stmt := range migrate.SQLiteSchema() {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestGetProfile(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	name := "Sam Viewer"
	row := models.Profile{
		ID:           uuid.New(),
		Email:        "sam@example.com",
		PasswordHash: "secret-hash",
		FullName:     &name,
	}
	require.NoError(t, db.Create(&row).Error)

	dto, err := svc.Get(context.Background(), row.ID)
	require.NoError(t, err)
	require.Equal(t, "sam@example.com", dto.Email)
	require.NotNil(t, dto.FullName)
	require.Equal(t, "Sam Viewer", *dto.FullName)
}

func TestGetProfileNotFound(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = svc.Get(context.Background(), uuid.Nil)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateProfilePartial(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	name := "Before"
	row := models.Profile{
		ID:           uuid.New(),
		Email:        "sam@example.com",
		PasswordHash: "secret-hash",
		FullName:     &name,
	}
	require.NoError(t, db.Create(&row).Error)

	avatar := "https://cdn.example.com/sam.png"
	dto, err := svc.Update(context.Background(), row.ID, UpdateProfileInput{AvatarURL: &avatar})
	require.NoError(t, err)
	require.NotNil(t, dto.AvatarURL)
	require.Equal(t, avatar, *dto.AvatarURL)
	require.NotNil(t, dto.FullName, "untouched field must survive")
	require.Equal(t, "Before", *dto.FullName)

	newName := "After"
	dto, err = svc.Update(context.Background(), row.ID, UpdateProfileInput{FullName: &newName})
	require.NoError(t, err)
	require.Equal(t, "After", *dto.FullName)
	require.Equal(t, avatar, *dto.AvatarURL)
}

func TestUpdateProfileNotFound(t *testing.T) {
	db := setupProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	name := "Ghost"
	_, err = svc.Update(context.Background(), uuid.New(), UpdateProfileInput{FullName: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateNormalizesEmail(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)

	row := models.Profile{
		ID:           uuid.New(),
		Email:        "  Shouty@Example.COM ",
		PasswordHash: "secret-hash",
	}
	require.NoError(t, repo.Create(context.Background(), &row))
	require.Equal(t, "shouty@example.com", row.Email)

	found, err := repo.FindByEmail(context.Background(), "SHOUTY@example.com")
	require.NoError(t, err)
	require.Equal(t, row.ID, found.ID)
}
