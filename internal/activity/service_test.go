package activity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/migrate"
)

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	for _, stmt := range migrate.SQLiteSchema() {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedFeedGroup(t *testing.T, db *gorm.DB) (models.Profile, models.Group) {
	t.Helper()

	name := "Feed Author"
	profile := models.Profile{
		ID:           uuid.New(),
		Email:        "author@example.com",
		PasswordHash: "x",
		FullName:     &name,
	}
	require.NoError(t, db.Create(&profile).Error)

	group := models.Group{ID: uuid.New(), Name: "Feed Crew", CreatedBy: profile.ID}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupMember{
		ID:      uuid.New(),
		GroupID: group.ID,
		UserID:  profile.ID,
		Role:    enums.MemberRoleOwner,
	}).Error)
	return profile, group
}

func seedFeedEvents(t *testing.T, db *gorm.DB, groupID, userID uuid.UUID, n int) {
	t.Helper()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("Movie %02d", i)
		row := models.GroupActivity{
			ID:         uuid.New(),
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityAddedMovie,
			MovieTitle: &title,
		}
		require.NoError(t, db.Create(&row).Error)
		require.NoError(t, db.Model(&models.GroupActivity{}).
			Where("id = ?", row.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
}

func TestFeedPaginatesWithCursor(t *testing.T) {
	db := setupActivityTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	author, group := seedFeedGroup(t, db)
	seedFeedEvents(t, db, group.ID, author.ID, 5)

	first, err := svc.List(context.Background(), ListParams{GroupID: group.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)
	require.Equal(t, "Movie 04", *first.Items[0].MovieTitle)
	require.Equal(t, "Movie 03", *first.Items[1].MovieTitle)

	second, err := svc.List(context.Background(), ListParams{GroupID: group.ID, Cursor: first.Cursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	require.NotEmpty(t, second.Cursor)
	require.Equal(t, "Movie 02", *second.Items[0].MovieTitle)
	require.Equal(t, "Movie 01", *second.Items[1].MovieTitle)

	last, err := svc.List(context.Background(), ListParams{GroupID: group.ID, Cursor: second.Cursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	require.Empty(t, last.Cursor, "final page must not return a cursor")
	require.Equal(t, "Movie 00", *last.Items[0].MovieTitle)
}

func TestFeedJoinsAuthorProfile(t *testing.T) {
	db := setupActivityTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	author, group := seedFeedGroup(t, db)
	seedFeedEvents(t, db, group.ID, author.ID, 1)

	feed, err := svc.List(context.Background(), ListParams{GroupID: group.ID})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	require.Equal(t, author.ID, feed.Items[0].UserID)
	require.NotNil(t, feed.Items[0].UserName)
	require.Equal(t, "Feed Author", *feed.Items[0].UserName)
	require.Equal(t, enums.ActivityAddedMovie, feed.Items[0].Action)
}

func TestFeedRejectsInvalidCursor(t *testing.T) {
	db := setupActivityTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, group := seedFeedGroup(t, db)

	_, err = svc.List(context.Background(), ListParams{GroupID: group.ID, Cursor: "!!garbage!!"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestFeedRequiresGroupID(t *testing.T) {
	db := setupActivityTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRecordInsertsRow(t *testing.T) {
	db := setupActivityTestDB(t)
	author, group := seedFeedGroup(t, db)

	title := "The Matrix"
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(context.Background(), tx, Entry{
			GroupID:    group.ID,
			UserID:     author.ID,
			Action:     enums.ActivityMarkedWatched,
			MovieTitle: &title,
		})
	}))

	var count int64
	require.NoError(t, db.Model(&models.GroupActivity{}).
		Where("group_id = ? AND action = ?", group.ID, enums.ActivityMarkedWatched).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}
