package groups

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/migrate"
)

func setupGroupsTestDB(t *testing.T) *gorm.DB {
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

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func buildGroupService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		GroupRepo:   NewRepository(db),
		ProfileRepo: profiles.NewRepository(db),
		Tx:          testTxRunner{db: db},
	})
	require.NoError(t, err)
	return svc
}

func seedProfile(t *testing.T, db *gorm.DB, email string) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected code for %v", err)
}

func TestCreateGroupAddsOwnerMembership(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "  Friday Crew  "})
	require.NoError(t, err)
	require.Equal(t, "Friday Crew", group.Name)
	require.Equal(t, enums.MemberRoleOwner, group.Role)
	require.Equal(t, 1, group.MemberCount)
	require.NotEqual(t, uuid.Nil, group.ID)

	member, err := svc.RequireMember(context.Background(), group.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleOwner, member.Role)
}

func TestCreateGroupRequiresName(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")

	_, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestGetHidesGroupFromNonMembers(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	stranger := seedProfile(t, db, "stranger@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), stranger.ID, group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListReturnsOnlyOwnGroups(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	alice := seedProfile(t, db, "alice@example.com")
	bob := seedProfile(t, db, "bob@example.com")

	_, err := svc.Create(context.Background(), alice.ID, CreateGroupInput{Name: "Alice Only"})
	require.NoError(t, err)
	shared, err := svc.Create(context.Background(), bob.ID, CreateGroupInput{Name: "Shared"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), bob.ID, shared.ID, AddMemberInput{UserID: alice.ID})
	require.NoError(t, err)

	groups, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	groups, err = svc.List(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "Shared", groups[0].Name)
	require.Equal(t, 2, groups[0].MemberCount)
}

func TestAddMemberRejectsDuplicates(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	friend := seedProfile(t, db, "friend@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Crew"})
	require.NoError(t, err)

	member, err := svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{UserID: friend.ID})
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleMember, member.Role)
	require.Equal(t, "friend@example.com", member.Email)

	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{UserID: friend.ID})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestAddMemberRequiresManagerRole(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	member := seedProfile(t, db, "member@example.com")
	newcomer := seedProfile(t, db, "new@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Crew"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{UserID: member.ID})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), member.ID, group.ID, AddMemberInput{UserID: newcomer.ID})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestAddMemberRejectsOwnerRole(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	friend := seedProfile(t, db, "friend@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Crew"})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{
		UserID: friend.ID,
		Role:   enums.MemberRoleOwner,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestRemoveMemberRules(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	first := seedProfile(t, db, "first@example.com")
	second := seedProfile(t, db, "second@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Crew"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{UserID: first.ID})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{UserID: second.ID})
	require.NoError(t, err)

	// a plain member cannot remove someone else
	err = svc.RemoveMember(context.Background(), first.ID, group.ID, second.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	// the owner membership is immutable
	err = svc.RemoveMember(context.Background(), owner.ID, group.ID, owner.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	// self-leave is always allowed
	require.NoError(t, svc.RemoveMember(context.Background(), first.ID, group.ID, first.ID))

	// managers can remove members
	require.NoError(t, svc.RemoveMember(context.Background(), owner.ID, group.ID, second.ID))

	members, err := svc.ListMembers(context.Background(), owner.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, owner.ID, members[0].UserID)
}

func TestDeleteGroupOwnerOnlyAndCascades(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")
	admin := seedProfile(t, db, "admin@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Crew"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), owner.ID, group.ID, AddMemberInput{
		UserID: admin.ID,
		Role:   enums.MemberRoleAdmin,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), admin.ID, group.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, group.ID))

	var memberCount int64
	require.NoError(t, db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount).Error)
	require.Zero(t, memberCount)
}

func TestUpdateRecordsActivity(t *testing.T) {
	db := setupGroupsTestDB(t)
	svc := buildGroupService(t, db)
	owner := seedProfile(t, db, "owner@example.com")

	group, err := svc.Create(context.Background(), owner.ID, CreateGroupInput{Name: "Before"})
	require.NoError(t, err)

	newName := "After"
	updated, err := svc.Update(context.Background(), owner.ID, group.ID, UpdateGroupInput{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Name)

	var actions []string
	require.NoError(t, db.Model(&models.GroupActivity{}).
		Where("group_id = ?", group.ID).
		Pluck("action", &actions).Error)
	require.Contains(t, actions, string(enums.ActivityUpdatedGroup))
}
