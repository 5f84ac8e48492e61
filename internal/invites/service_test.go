package invites

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/groups"
	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/migrate"
)

type inviteFixture struct {
	db       *gorm.DB
	svc      Service
	groupSvc groups.Service
	groupID  uuid.UUID
	owner    models.Profile
	member   models.Profile
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupInviteFixture(t *testing.T) inviteFixture {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	for _, stmt := range migrate.SQLiteSchema() {
		require.NoError(t, db.Exec(stmt).Error)
	}

	tx := testTxRunner{db: db}
	groupSvc, err := groups.NewService(groups.ServiceParams{
		GroupRepo:   groups.NewRepository(db),
		ProfileRepo: profiles.NewRepository(db),
		Tx:          tx,
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		InviteRepo: NewRepository(db),
		GroupRepo:  groups.NewRepository(db),
		Members:    groupSvc,
		Tx:         tx,
		Config: config.InviteConfig{
			CodeLength:    8,
			DefaultExpiry: 7 * 24 * time.Hour,
		},
	})
	require.NoError(t, err)

	owner := models.Profile{ID: uuid.New(), Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	member := models.Profile{ID: uuid.New(), Email: "member@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&member).Error)

	group, err := groupSvc.Create(context.Background(), owner.ID, groups.CreateGroupInput{Name: "Movie Night"})
	require.NoError(t, err)
	_, err = groupSvc.AddMember(context.Background(), owner.ID, group.ID, groups.AddMemberInput{UserID: member.ID})
	require.NoError(t, err)

	return inviteFixture{db: db, svc: svc, groupSvc: groupSvc, groupID: group.ID, owner: owner, member: member}
}

func seedInviteProfile(t *testing.T, db *gorm.DB, email string) models.Profile {
	t.Helper()
	profile := models.Profile{ID: uuid.New(), Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func requireInviteCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected code for %v", err)
}

func TestCreateInviteManagerOnly(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()

	invite, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)
	require.Len(t, invite.Code, 8)
	require.Equal(t, strings.ToUpper(invite.Code), invite.Code)
	require.Equal(t, fx.owner.ID, invite.CreatedBy)
	require.NotNil(t, invite.ExpiresAt, "default expiry should be applied")
	require.True(t, invite.ExpiresAt.After(time.Now()))
	require.Nil(t, invite.MaxUses)

	_, err = fx.svc.Create(ctx, fx.member.ID, fx.groupID, CreateInviteInput{})
	requireInviteCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateInviteRejectsPastExpiry(t *testing.T) {
	fx := setupInviteFixture(t)

	past := time.Now().UTC().Add(-time.Hour)
	_, err := fx.svc.Create(context.Background(), fx.owner.ID, fx.groupID, CreateInviteInput{ExpiresAt: &past})
	requireInviteCode(t, err, pkgerrors.CodeValidation)
}

func TestListAndRevokeInvites(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)

	invites, err := fx.svc.List(ctx, fx.owner.ID, fx.groupID)
	require.NoError(t, err)
	require.Len(t, invites, 2)

	_, err = fx.svc.List(ctx, fx.member.ID, fx.groupID)
	requireInviteCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, fx.svc.Revoke(ctx, fx.owner.ID, fx.groupID, first.ID))
	err = fx.svc.Revoke(ctx, fx.owner.ID, fx.groupID, first.ID)
	requireInviteCode(t, err, pkgerrors.CodeNotFound)

	_, err = fx.svc.Resolve(ctx, first.Code)
	requireInviteCode(t, err, pkgerrors.CodeNotFound)
}

func TestResolveNormalizesCode(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()

	invite, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)

	preview, err := fx.svc.Resolve(ctx, "  "+strings.ToLower(invite.Code)+" ")
	require.NoError(t, err)
	require.Equal(t, invite.Code, preview.Code)
	require.Equal(t, "Movie Night", preview.GroupName)
	require.Equal(t, 2, preview.MemberCount)

	_, err = fx.svc.Resolve(ctx, "   ")
	requireInviteCode(t, err, pkgerrors.CodeValidation)
	_, err = fx.svc.Resolve(ctx, "NOSUCHCODE")
	requireInviteCode(t, err, pkgerrors.CodeNotFound)
}

func TestResolveRejectsExpiredInvite(t *testing.T) {
	fx := setupInviteFixture(t)

	expired := time.Now().UTC().Add(-time.Minute)
	invite := models.InviteLink{
		ID:        uuid.New(),
		GroupID:   fx.groupID,
		Code:      "EXPIRED1",
		CreatedBy: fx.owner.ID,
		ExpiresAt: &expired,
	}
	require.NoError(t, fx.db.Create(&invite).Error)

	_, err := fx.svc.Resolve(context.Background(), "EXPIRED1")
	requireInviteCode(t, err, pkgerrors.CodeConflict)
	require.Contains(t, err.Error(), "expired")
}

func TestAcceptJoinsGroupAndCountsUse(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()
	newcomer := seedInviteProfile(t, fx.db, "newcomer@example.com")

	invite, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)

	result, err := fx.svc.Accept(ctx, newcomer.ID, strings.ToLower(invite.Code))
	require.NoError(t, err)
	require.Equal(t, fx.groupID, result.GroupID)
	require.Equal(t, "Movie Night", result.GroupName)
	require.NotEqual(t, uuid.Nil, result.MemberID)

	member, err := fx.groupSvc.RequireMember(ctx, fx.groupID, newcomer.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleMember, member.Role)

	var row models.InviteLink
	require.NoError(t, fx.db.First(&row, "id = ?", invite.ID).Error)
	require.Equal(t, 1, row.UsesCount)

	var actions []string
	require.NoError(t, fx.db.Model(&models.GroupActivity{}).
		Where("group_id = ? AND user_id = ?", fx.groupID, newcomer.ID).
		Pluck("action", &actions).Error)
	require.Contains(t, actions, string(enums.ActivityJoinedGroup))
}

func TestAcceptRejectsExistingMember(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()

	invite, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{})
	require.NoError(t, err)

	_, err = fx.svc.Accept(ctx, fx.member.ID, invite.Code)
	requireInviteCode(t, err, pkgerrors.CodeConflict)

	// the failed join must not consume a use
	var row models.InviteLink
	require.NoError(t, fx.db.First(&row, "id = ?", invite.ID).Error)
	require.Zero(t, row.UsesCount)
}

func TestAcceptEnforcesMaxUses(t *testing.T) {
	fx := setupInviteFixture(t)
	ctx := context.Background()
	one := 1
	first := seedInviteProfile(t, fx.db, "first@example.com")
	second := seedInviteProfile(t, fx.db, "second@example.com")

	invite, err := fx.svc.Create(ctx, fx.owner.ID, fx.groupID, CreateInviteInput{MaxUses: &one})
	require.NoError(t, err)

	_, err = fx.svc.Accept(ctx, first.ID, invite.Code)
	require.NoError(t, err)

	_, err = fx.svc.Accept(ctx, second.ID, invite.Code)
	requireInviteCode(t, err, pkgerrors.CodeConflict)
	require.Contains(t, err.Error(), "usage limit")

	_, err = fx.svc.Resolve(ctx, invite.Code)
	requireInviteCode(t, err, pkgerrors.CodeConflict)
}

func TestAcceptRequiresUser(t *testing.T) {
	fx := setupInviteFixture(t)

	_, err := fx.svc.Accept(context.Background(), uuid.Nil, "SOMECODE")
	requireInviteCode(t, err, pkgerrors.CodeValidation)
}
