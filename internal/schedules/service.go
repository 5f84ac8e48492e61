package schedules

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/pkg/db"
	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

// TxRunner abstracts transactional execution for multi-step writes.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MembershipChecker verifies the caller belongs to the group before any
// watchlist operation runs.
type MembershipChecker interface {
	RequireMember(ctx context.Context, groupID, userID uuid.UUID) (models.GroupMember, error)
}

// ServiceParams groups dependencies for the schedule service.
type ServiceParams struct {
	ScheduleRepo *Repository
	Members      MembershipChecker
	Tx           TxRunner
}

// Service exposes business rules for group watchlists, votes, and interests.
type Service interface {
	Create(ctx context.Context, userID, groupID uuid.UUID, input CreateScheduleInput) (ScheduleDTO, error)
	List(ctx context.Context, userID, groupID uuid.UUID) ([]ScheduleDTO, error)
	Delete(ctx context.Context, userID, groupID, scheduleID uuid.UUID) error
	SetDate(ctx context.Context, userID, groupID, scheduleID uuid.UUID, input SetDateInput) (ScheduleDTO, error)
	ClearDate(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error)
	MarkWatched(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error)
	UnmarkWatched(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error)
	ToggleVote(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (VoteStateDTO, error)
	ToggleInterest(ctx context.Context, userID, groupID, scheduleID uuid.UUID, input ToggleInterestInput) (InterestStateDTO, error)
}

type service struct {
	scheduleRepo *Repository
	members      MembershipChecker
	tx           TxRunner
}

// NewService builds a schedule service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ScheduleRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule repo is required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership checker is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		scheduleRepo: params.ScheduleRepo,
		members:      params.Members,
		tx:           params.Tx,
	}, nil
}

// Create adds a catalog title to the group watchlist. Each title can appear at
// most once per group.
func (s *service) Create(ctx context.Context, userID, groupID uuid.UUID, input CreateScheduleInput) (ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return ScheduleDTO{}, err
	}
	title := strings.TrimSpace(input.MovieTitle)
	if title == "" {
		return ScheduleDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "movie title is required")
	}

	mediaType := input.MediaType
	if mediaType == "" {
		mediaType = enums.MediaTypeMovie
	}
	if !mediaType.IsValid() {
		return ScheduleDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type")
	}

	schedule := models.GroupSchedule{
		GroupID:       groupID,
		UserID:        userID,
		MovieID:       input.MovieID,
		MovieTitle:    title,
		MoviePoster:   input.MoviePoster,
		MovieOverview: input.MovieOverview,
		ScheduledDate: input.ScheduledDate,
		ReleaseDate:   input.ReleaseDate,
		FirstAirDate:  input.FirstAirDate,
		MediaType:     mediaType,
		Genres:        MapGenreIDs(input.GenreIDs),
		ReleaseYear:   deriveReleaseYear(input.ReleaseDate, input.FirstAirDate),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.scheduleRepo.WithTx(tx).Create(ctx, &schedule); err != nil {
			return err
		}
		if err := activity.Record(ctx, tx, activity.Entry{
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityAddedMovie,
			MovieTitle: &schedule.MovieTitle,
		}); err != nil {
			return err
		}
		if schedule.ScheduledDate != nil {
			return activity.Record(ctx, tx, activity.Entry{
				GroupID:    groupID,
				UserID:     userID,
				Action:     enums.ActivityScheduledMovie,
				MovieTitle: &schedule.MovieTitle,
			})
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "group_schedules_group_movie_key") {
			return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "title is already on the watchlist")
		}
		return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create schedule")
	}

	return toDTO(schedule), nil
}

// List returns the watchlist scoped to the requesting member, enriched with
// vote and interest state.
func (s *service) List(ctx context.Context, userID, groupID uuid.UUID) ([]ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	rows, err := s.scheduleRepo.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schedules")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	voteCounts, err := s.scheduleRepo.VoteCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vote counts")
	}
	userVotes, err := s.scheduleRepo.UserVotes(ctx, ids, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user votes")
	}
	interestScores, err := s.scheduleRepo.InterestScores(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load interest scores")
	}
	userInterests, err := s.scheduleRepo.UserInterests(ctx, ids, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user interests")
	}

	items := make([]ScheduleDTO, 0, len(rows))
	for _, row := range rows {
		dto := toDTO(row)
		dto.VoteCount = voteCounts[row.ID]
		dto.Voted = userVotes[row.ID]
		dto.InterestScore = interestScores[row.ID]
		if voteType, ok := userInterests[row.ID]; ok {
			v := int(voteType)
			dto.MyInterest = &v
		}
		items = append(items, dto)
	}
	return items, nil
}

// Delete removes a watchlist entry. The member who added it, plus owners and
// admins, may remove it.
func (s *service) Delete(ctx context.Context, userID, groupID, scheduleID uuid.UUID) error {
	member, err := s.members.RequireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return err
	}

	if schedule.UserID != userID && member.Role != enums.MemberRoleOwner && member.Role != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to remove this entry")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.scheduleRepo.WithTx(tx).Delete(ctx, groupID, scheduleID)
		if err != nil {
			return err
		}
		if !removed {
			return gorm.ErrRecordNotFound
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityRemovedMovie,
			MovieTitle: &schedule.MovieTitle,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete schedule")
	}
	return nil
}

// SetDate plans a watch date for the entry.
func (s *service) SetDate(ctx context.Context, userID, groupID, scheduleID uuid.UUID, input SetDateInput) (ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return ScheduleDTO{}, err
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return ScheduleDTO{}, err
	}

	date := input.ScheduledDate.UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.scheduleRepo.WithTx(tx).UpdateScheduledDate(ctx, scheduleID, date)
		if err != nil {
			return err
		}
		if !updated {
			return gorm.ErrRecordNotFound
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityScheduledMovie,
			MovieTitle: &schedule.MovieTitle,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
		}
		return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set scheduled date")
	}

	schedule.ScheduledDate = &date
	return toDTO(schedule), nil
}

// ClearDate removes the planned watch date without touching anything else.
func (s *service) ClearDate(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return ScheduleDTO{}, err
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return ScheduleDTO{}, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.scheduleRepo.WithTx(tx).UpdateScheduledDate(ctx, scheduleID, nil)
		if err != nil {
			return err
		}
		if !updated {
			return gorm.ErrRecordNotFound
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityRemovedDate,
			MovieTitle: &schedule.MovieTitle,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
		}
		return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear scheduled date")
	}

	schedule.ScheduledDate = nil
	return toDTO(schedule), nil
}

// MarkWatched flips the entry to watched and drops the planned date. The date
// is not recoverable afterwards.
func (s *service) MarkWatched(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return ScheduleDTO{}, err
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return ScheduleDTO{}, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.scheduleRepo.WithTx(tx).MarkWatched(ctx, scheduleID)
		if err != nil {
			return err
		}
		if !updated {
			return gorm.ErrRecordNotFound
		}
		return activity.Record(ctx, tx, activity.Entry{
			GroupID:    groupID,
			UserID:     userID,
			Action:     enums.ActivityMarkedWatched,
			MovieTitle: &schedule.MovieTitle,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
		}
		return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark watched")
	}

	schedule.Watched = true
	schedule.ScheduledDate = nil
	return toDTO(schedule), nil
}

// UnmarkWatched puts the entry back on the unwatched pile. The date that
// MarkWatched dropped is not restored.
func (s *service) UnmarkWatched(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (ScheduleDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return ScheduleDTO{}, err
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return ScheduleDTO{}, err
	}

	updated, err := s.scheduleRepo.UnmarkWatched(ctx, scheduleID)
	if err != nil {
		return ScheduleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unmark watched")
	}
	if !updated {
		return ScheduleDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
	}

	schedule.Watched = false
	return toDTO(schedule), nil
}

// ToggleVote flips the caller's vote: voting twice lands back on no vote.
func (s *service) ToggleVote(ctx context.Context, userID, groupID, scheduleID uuid.UUID) (VoteStateDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return VoteStateDTO{}, err
	}
	if _, err := s.loadGroupSchedule(ctx, groupID, scheduleID); err != nil {
		return VoteStateDTO{}, err
	}

	removed, err := s.scheduleRepo.DeleteVote(ctx, scheduleID, userID)
	if err != nil {
		return VoteStateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle vote")
	}

	voted := false
	if !removed {
		if _, err := s.scheduleRepo.InsertVote(ctx, scheduleID, userID); err != nil {
			return VoteStateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle vote")
		}
		voted = true
	}

	count, err := s.scheduleRepo.CountVotes(ctx, scheduleID)
	if err != nil {
		return VoteStateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count votes")
	}

	return VoteStateDTO{
		ScheduleID: scheduleID,
		Voted:      voted,
		VoteCount:  int(count),
	}, nil
}

// ToggleInterest flips the caller's thumbs up/down. Repeating the same
// direction clears it; the opposite direction replaces it.
func (s *service) ToggleInterest(ctx context.Context, userID, groupID, scheduleID uuid.UUID, input ToggleInterestInput) (InterestStateDTO, error) {
	if _, err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return InterestStateDTO{}, err
	}
	if !input.VoteType.IsValid() {
		return InterestStateDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "vote type must be -1 or 1")
	}

	schedule, err := s.loadGroupSchedule(ctx, groupID, scheduleID)
	if err != nil {
		return InterestStateDTO{}, err
	}

	var myInterest *int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.scheduleRepo.WithTx(tx)

		existing, err := repo.FindInterest(ctx, scheduleID, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			interest := models.ScheduleInterest{
				ScheduleID: scheduleID,
				UserID:     userID,
				VoteType:   input.VoteType,
			}
			if err := repo.InsertInterest(ctx, &interest); err != nil {
				return err
			}
			v := int(input.VoteType)
			myInterest = &v
			return activity.Record(ctx, tx, activity.Entry{
				GroupID:    groupID,
				UserID:     userID,
				Action:     enums.ActivityShowedInterest,
				MovieTitle: &schedule.MovieTitle,
			})

		case err != nil:
			return err

		case existing.VoteType == input.VoteType:
			_, err := repo.DeleteInterest(ctx, scheduleID, userID)
			return err

		default:
			if err := repo.UpdateInterestType(ctx, existing.ID, input.VoteType); err != nil {
				return err
			}
			v := int(input.VoteType)
			myInterest = &v
			return nil
		}
	})
	if err != nil {
		return InterestStateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle interest")
	}

	score, err := s.scheduleRepo.InterestScore(ctx, scheduleID)
	if err != nil {
		return InterestStateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "interest score")
	}

	return InterestStateDTO{
		ScheduleID:    scheduleID,
		MyInterest:    myInterest,
		InterestScore: score,
	}, nil
}

func (s *service) loadGroupSchedule(ctx context.Context, groupID, scheduleID uuid.UUID) (models.GroupSchedule, error) {
	if scheduleID == uuid.Nil {
		return models.GroupSchedule{}, pkgerrors.New(pkgerrors.CodeValidation, "schedule id is required")
	}
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GroupSchedule{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
		}
		return models.GroupSchedule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	if schedule.GroupID != groupID {
		return models.GroupSchedule{}, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
	}
	return schedule, nil
}

// deriveReleaseYear extracts the year from a YYYY-MM-DD release date, falling
// back to the first air date for TV entries.
func deriveReleaseYear(releaseDate, firstAirDate *string) *int {
	for _, candidate := range []*string{releaseDate, firstAirDate} {
		if candidate == nil {
			continue
		}
		value := strings.TrimSpace(*candidate)
		if len(value) < 4 {
			continue
		}
		year, err := strconv.Atoi(value[:4])
		if err != nil || year < 1800 || year > 3000 {
			continue
		}
		return &year
	}
	return nil
}
