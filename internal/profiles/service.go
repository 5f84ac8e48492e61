package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

// Service exposes read/update access to the caller's own profile.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a profile service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return ToDTO(profile), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.repo.Update(ctx, userID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return ToDTO(profile), nil
}
