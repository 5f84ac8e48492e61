package groups

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	"github.com/watchcrew/watchcrew-backend/pkg/db"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

// TxRunner abstracts transactional execution for multi-step writes.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the group service.
type ServiceParams struct {
	GroupRepo   *Repository
	ProfileRepo *profiles.Repository
	Tx          TxRunner
}

// Service exposes business rules for groups and their memberships.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateGroupInput) (GroupDTO, error)
	Get(ctx context.Context, userID, groupID uuid.UUID) (GroupDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error)
	Update(ctx context.Context, userID, groupID uuid.UUID, input UpdateGroupInput) (GroupDTO, error)
	Delete(ctx context.Context, userID, groupID uuid.UUID) error
	AddMember(ctx context.Context, actorID, groupID uuid.UUID, input AddMemberInput) (MemberDTO, error)
	RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error
	ListMembers(ctx context.Context, userID, groupID uuid.UUID) ([]MemberDTO, error)
	RequireMember(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error)
}

type service struct {
	groupRepo   *Repository
	profileRepo *profiles.Repository
	tx          TxRunner
}

// NewService builds a group service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.GroupRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group repo is required")
	}
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		groupRepo:   params.GroupRepo,
		profileRepo: params.ProfileRepo,
		tx:          params.Tx,
	}, nil
}

// Create inserts the group and its owner membership atomically.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateGroupInput) (GroupDTO, error) {
	if userID == uuid.Nil {
		return GroupDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return GroupDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "group name is required")
	}

	group := models.Group{
		Name:        name,
		Description: input.Description,
		CreatedBy:   userID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.groupRepo.WithTx(tx)
		if err := repo.Create(ctx, &group); err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID: group.ID,
			UserID:  userID,
			Role:    enums.MemberRoleOwner,
		}
		return repo.AddMember(ctx, &member)
	})
	if err != nil {
		return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group")
	}

	return GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatedBy:   group.CreatedBy,
		Role:        enums.MemberRoleOwner,
		MemberCount: 1,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}, nil
}

// Get returns the group scoped to the requesting member.
func (s *service) Get(ctx context.Context, userID, groupID uuid.UUID) (GroupDTO, error) {
	member, err := s.RequireMember(ctx, groupID, userID)
	if err != nil {
		return GroupDTO{}, err
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "group not found")
		}
		return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	count, err := s.groupRepo.CountMembers(ctx, groupID)
	if err != nil {
		return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}

	return GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatedBy:   group.CreatedBy,
		Role:        member.Role,
		MemberCount: int(count),
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}, nil
}

// List returns every group the user belongs to.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	records, err := s.groupRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list groups")
	}

	items := make([]GroupDTO, 0, len(records))
	for _, record := range records {
		items = append(items, GroupDTO{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
			CreatedBy:   record.CreatedBy,
			Role:        enums.MemberRole(record.Role),
			MemberCount: record.MemberCount,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		})
	}
	return items, nil
}

// Update renames or re-describes the group. Owners and admins only.
func (s *service) Update(ctx context.Context, userID, groupID uuid.UUID, input UpdateGroupInput) (GroupDTO, error) {
	member, err := s.requireManager(ctx, groupID, userID)
	if err != nil {
		return GroupDTO{}, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return GroupDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "group name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	var group models.Group
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		group, err = s.groupRepo.WithTx(tx).Update(ctx, groupID, updates)
		if err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID: groupID,
			UserID:  userID,
			Action:  enums.ActivityUpdatedGroup,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "group not found")
		}
		return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update group")
	}

	count, err := s.groupRepo.CountMembers(ctx, groupID)
	if err != nil {
		return GroupDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}

	return GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatedBy:   group.CreatedBy,
		Role:        member.Role,
		MemberCount: int(count),
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}, nil
}

// Delete removes the group and everything hanging off it. Owners only.
func (s *service) Delete(ctx context.Context, userID, groupID uuid.UUID) error {
	member, err := s.RequireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role != enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete a group")
	}

	deleted, err := s.groupRepo.Delete(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	return nil
}

// AddMember adds a user directly to the group. Owners and admins only.
func (s *service) AddMember(ctx context.Context, actorID, groupID uuid.UUID, input AddMemberInput) (MemberDTO, error) {
	if _, err := s.requireManager(ctx, groupID, actorID); err != nil {
		return MemberDTO{}, err
	}
	if input.UserID == uuid.Nil {
		return MemberDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	role := input.Role
	if role == "" {
		role = enums.MemberRoleMember
	}
	if !role.IsValid() || role == enums.MemberRoleOwner {
		return MemberDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid member role")
	}

	profile, err := s.profileRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MemberDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return MemberDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	member := models.GroupMember{
		GroupID: groupID,
		UserID:  input.UserID,
		Role:    role,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.groupRepo.WithTx(tx).AddMember(ctx, &member); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID: groupID,
			UserID:  input.UserID,
			Action:  enums.ActivityJoinedGroup,
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "group_members_group_user_key") {
			return MemberDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user is already a member")
		}
		return MemberDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add member")
	}

	return MemberDTO{
		ID:        member.ID,
		UserID:    member.UserID,
		Role:      member.Role,
		FullName:  profile.FullName,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		JoinedAt:  member.JoinedAt,
	}, nil
}

// RemoveMember removes a member. Users may remove themselves; owners and admins
// may remove others. The owner membership is immutable while the group exists.
func (s *service) RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	actor, err := s.RequireMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}

	target, err := s.groupRepo.FindMember(ctx, groupID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "member not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	if target.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "the owner cannot be removed; delete the group instead")
	}
	if actorID != targetID && actor.Role != enums.MemberRoleOwner && actor.Role != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to remove members")
	}

	removed, err := s.groupRepo.RemoveMember(ctx, groupID, targetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove member")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return nil
}

// ListMembers returns the group roster. Members only.
func (s *service) ListMembers(ctx context.Context, userID, groupID uuid.UUID) ([]MemberDTO, error) {
	if _, err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	records, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	items := make([]MemberDTO, 0, len(records))
	for _, record := range records {
		items = append(items, MemberDTO{
			ID:        record.ID,
			UserID:    record.UserID,
			Role:      enums.MemberRole(record.Role),
			FullName:  record.FullName,
			Email:     record.Email,
			AvatarURL: record.AvatarURL,
			JoinedAt:  record.JoinedAt,
		})
	}
	return items, nil
}

// RequireMember loads the caller's membership or fails with NotFound. Non-members
// get the same answer as a missing group so group IDs are not probeable.
func (s *service) RequireMember(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error) {
	if groupID == uuid.Nil {
		return models.GroupMember{}, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}
	if userID == uuid.Nil {
		return models.GroupMember{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	member, err := s.groupRepo.FindMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GroupMember{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "group not found")
		}
		return models.GroupMember{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return member, nil
}

func (s *service) requireManager(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error) {
	member, err := s.RequireMember(ctx, groupID, userID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if member.Role != enums.MemberRoleOwner && member.Role != enums.MemberRoleAdmin {
		return models.GroupMember{}, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}
	return member, nil
}
