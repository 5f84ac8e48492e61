package invites

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/internal/groups"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/db"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

// Code generation retries a handful of times on the off chance of a collision.
const maxCodeAttempts = 5

// TxRunner abstracts transactional execution for multi-step writes.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MembershipChecker verifies group membership for invite management.
type MembershipChecker interface {
	RequireMember(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error)
}

// ServiceParams groups dependencies for the invite service.
type ServiceParams struct {
	InviteRepo *Repository
	GroupRepo  *groups.Repository
	Members    MembershipChecker
	Tx         TxRunner
	Config     config.InviteConfig
}

// Service exposes invite link lifecycle operations.
type Service interface {
	Create(ctx context.Context, userID, groupID uuid.UUID, input CreateInviteInput) (InviteDTO, error)
	List(ctx context.Context, userID, groupID uuid.UUID) ([]InviteDTO, error)
	Revoke(ctx context.Context, userID, groupID, inviteID uuid.UUID) error
	Resolve(ctx context.Context, code string) (InvitePreviewDTO, error)
	Accept(ctx context.Context, userID uuid.UUID, code string) (AcceptResultDTO, error)
}

type service struct {
	inviteRepo *Repository
	groupRepo  *groups.Repository
	members    MembershipChecker
	tx         TxRunner
	cfg        config.InviteConfig
	now        func() time.Time
}

// NewService builds an invite service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.InviteRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite repo is required")
	}
	if params.GroupRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group repo is required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership checker is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	cfg := params.Config
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 8
	}
	return &service{
		inviteRepo: params.InviteRepo,
		groupRepo:  params.GroupRepo,
		members:    params.Members,
		tx:         params.Tx,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create mints a new invite link. Owners and admins only.
func (s *service) Create(ctx context.Context, userID, groupID uuid.UUID, input CreateInviteInput) (InviteDTO, error) {
	if err := s.requireManager(ctx, groupID, userID); err != nil {
		return InviteDTO{}, err
	}

	now := s.now()
	expiresAt := input.ExpiresAt
	if expiresAt == nil && s.cfg.DefaultExpiry > 0 {
		t := now.Add(s.cfg.DefaultExpiry)
		expiresAt = &t
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return InviteDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	maxUses := input.MaxUses
	if maxUses == nil && s.cfg.DefaultMaxUses > 0 {
		v := s.cfg.DefaultMaxUses
		maxUses = &v
	}

	var invite models.InviteLink
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode(s.cfg.CodeLength)
		if err != nil {
			return InviteDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
		}

		invite = models.InviteLink{
			GroupID:   groupID,
			Code:      code,
			CreatedBy: userID,
			ExpiresAt: expiresAt,
			MaxUses:   maxUses,
		}
		err = s.inviteRepo.Create(ctx, &invite)
		if err == nil {
			return toDTO(invite), nil
		}
		if !db.IsUniqueViolation(err, "invite_links_code_key") {
			return InviteDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invite")
		}
	}
	return InviteDTO{}, pkgerrors.New(pkgerrors.CodeInternal, "could not generate a unique invite code")
}

// List returns the invites for a group. Owners and admins only.
func (s *service) List(ctx context.Context, userID, groupID uuid.UUID) ([]InviteDTO, error) {
	if err := s.requireManager(ctx, groupID, userID); err != nil {
		return nil, err
	}

	invites, err := s.inviteRepo.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invites")
	}

	items := make([]InviteDTO, 0, len(invites))
	for _, invite := range invites {
		items = append(items, toDTO(invite))
	}
	return items, nil
}

// Revoke deletes an invite link so it can no longer be accepted.
func (s *service) Revoke(ctx context.Context, userID, groupID, inviteID uuid.UUID) error {
	if err := s.requireManager(ctx, groupID, userID); err != nil {
		return err
	}

	removed, err := s.inviteRepo.Delete(ctx, groupID, inviteID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke invite")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
	}
	return nil
}

// Resolve returns the join-page preview for a code without requiring auth.
func (s *service) Resolve(ctx context.Context, code string) (InvitePreviewDTO, error) {
	code = normalizeCode(code)
	if code == "" {
		return InvitePreviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	record, err := s.inviteRepo.FindByCodeWithGroup(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvitePreviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invite not found")
		}
		return InvitePreviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}

	if err := checkUsable(record.ExpiresAt, record.MaxUses, record.UsesCount, s.now()); err != nil {
		return InvitePreviewDTO{}, err
	}

	return InvitePreviewDTO{
		Code:             record.Code,
		GroupName:        record.GroupName,
		GroupDescription: record.GroupDescription,
		MemberCount:      record.MemberCount,
		ExpiresAt:        record.ExpiresAt,
	}, nil
}

// Accept joins the caller to the invite's group. The membership insert and the
// use-counter bump commit or roll back together.
func (s *service) Accept(ctx context.Context, userID uuid.UUID, code string) (AcceptResultDTO, error) {
	if userID == uuid.Nil {
		return AcceptResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	code = normalizeCode(code)
	if code == "" {
		return AcceptResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	invite, err := s.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invite not found")
		}
		return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}

	now := s.now()
	if err := checkUsable(invite.ExpiresAt, invite.MaxUses, invite.UsesCount, now); err != nil {
		return AcceptResultDTO{}, err
	}

	group, err := s.groupRepo.FindByID(ctx, invite.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "group not found")
		}
		return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	member := models.GroupMember{
		GroupID: invite.GroupID,
		UserID:  userID,
		Role:    enums.MemberRoleMember,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bumped, err := s.inviteRepo.WithTx(tx).IncrementUses(ctx, invite.ID)
		if err != nil {
			return err
		}
		if !bumped {
			return errInviteExhausted
		}
		if err := s.groupRepo.WithTx(tx).AddMember(ctx, &member); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID: invite.GroupID,
			UserID:  userID,
			Action:  enums.ActivityJoinedGroup,
		})
	})
	if err != nil {
		if errors.Is(err, errInviteExhausted) {
			return AcceptResultDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "invite has reached its usage limit")
		}
		if db.IsUniqueViolation(err, "group_members_group_user_key") {
			return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already a member of this group")
		}
		return AcceptResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invite")
	}

	return AcceptResultDTO{
		GroupID:   group.ID,
		GroupName: group.Name,
		MemberID:  member.ID,
		JoinedAt:  member.JoinedAt,
	}, nil
}

var errInviteExhausted = errors.New("invite exhausted")

func (s *service) requireManager(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.members.RequireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role != enums.MemberRoleOwner && member.Role != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to manage invites")
	}
	return nil
}

func checkUsable(expiresAt *time.Time, maxUses *int, usesCount int, now time.Time) error {
	if expiresAt != nil && !expiresAt.After(now) {
		return pkgerrors.New(pkgerrors.CodeConflict, "invite has expired")
	}
	if maxUses != nil && usesCount >= *maxUses {
		return pkgerrors.New(pkgerrors.CodeConflict, "invite has reached its usage limit")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
