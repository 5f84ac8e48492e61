package schedules

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// Repository encapsulates watchlist entry, vote, and interest persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a schedule repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new watchlist entry.
func (r *Repository) Create(ctx context.Context, schedule *models.GroupSchedule) error {
	if schedule == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(schedule).Error
}

// FindByID loads a watchlist entry by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.GroupSchedule, error) {
	var schedule models.GroupSchedule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&schedule).
		Error
	return schedule, err
}

// ListForGroup returns the group watchlist: dated entries first by soonest date,
// undated entries afterwards by recency of addition.
func (r *Repository) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]models.GroupSchedule, error) {
	var schedules []models.GroupSchedule
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("scheduled_date ASC NULLS LAST").
		Order("created_at DESC").
		Find(&schedules).
		Error
	return schedules, err
}

// Delete removes the entry if it belongs to the group. Votes and interests
// cascade at the database level.
func (r *Repository) Delete(ctx context.Context, groupID, scheduleID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", scheduleID, groupID).
		Delete(&models.GroupSchedule{})
	return result.RowsAffected > 0, result.Error
}

// UpdateScheduledDate sets or clears the planned watch date.
func (r *Repository) UpdateScheduledDate(ctx context.Context, id uuid.UUID, date any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupSchedule{}).
		Where("id = ?", id).
		Update("scheduled_date", date)
	return result.RowsAffected > 0, result.Error
}

// MarkWatched flips the entry to watched and drops any planned date. The prior
// date is not retained.
func (r *Repository) MarkWatched(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupSchedule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"watched":        true,
			"scheduled_date": nil,
		})
	return result.RowsAffected > 0, result.Error
}

// UnmarkWatched flips the entry back to unwatched. The scheduled date stays
// as it is, so a date dropped by MarkWatched is not restored.
func (r *Repository) UnmarkWatched(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupSchedule{}).
		Where("id = ?", id).
		Update("watched", false)
	return result.RowsAffected > 0, result.Error
}

// InsertVote adds the user's vote, ignoring duplicates. Returns whether a row
// was actually inserted.
func (r *Repository) InsertVote(ctx context.Context, scheduleID, userID uuid.UUID) (bool, error) {
	vote := models.ScheduleVote{
		ScheduleID: scheduleID,
		UserID:     userID,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&vote)
	return result.RowsAffected > 0, result.Error
}

// DeleteVote removes the user's vote if present.
func (r *Repository) DeleteVote(ctx context.Context, scheduleID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("schedule_id = ? AND user_id = ?", scheduleID, userID).
		Delete(&models.ScheduleVote{})
	return result.RowsAffected > 0, result.Error
}

// CountVotes returns the vote total for one entry.
func (r *Repository) CountVotes(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleVote{}).
		Where("schedule_id = ?", scheduleID).
		Count(&count).
		Error
	return count, err
}

type voteCountRecord struct {
	ScheduleID uuid.UUID `gorm:"column:schedule_id"`
	Count      int       `gorm:"column:count"`
}

// VoteCounts returns vote totals for the provided entries.
func (r *Repository) VoteCounts(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return counts, nil
	}

	var records []voteCountRecord
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleVote{}).
		Select("schedule_id, COUNT(*) AS count").
		Where("schedule_id IN ?", scheduleIDs).
		Group("schedule_id").
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		counts[record.ScheduleID] = record.Count
	}
	return counts, nil
}

// UserVotes returns the set of entries the user has voted for.
func (r *Repository) UserVotes(ctx context.Context, scheduleIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	voted := make(map[uuid.UUID]bool, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return voted, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleVote{}).
		Where("schedule_id IN ? AND user_id = ?", scheduleIDs, userID).
		Pluck("schedule_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		voted[id] = true
	}
	return voted, nil
}

// FindInterest loads the user's interest row for an entry.
func (r *Repository) FindInterest(ctx context.Context, scheduleID, userID uuid.UUID) (models.ScheduleInterest, error) {
	var interest models.ScheduleInterest
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND user_id = ?", scheduleID, userID).
		First(&interest).
		Error
	return interest, err
}

// InsertInterest adds a new interest row.
func (r *Repository) InsertInterest(ctx context.Context, interest *models.ScheduleInterest) error {
	if interest == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(interest).Error
}

// UpdateInterestType flips an existing interest to the opposite direction.
func (r *Repository) UpdateInterestType(ctx context.Context, id uuid.UUID, voteType enums.VoteType) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduleInterest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"vote_type":  voteType,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// DeleteInterest removes the user's interest row if present.
func (r *Repository) DeleteInterest(ctx context.Context, scheduleID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("schedule_id = ? AND user_id = ?", scheduleID, userID).
		Delete(&models.ScheduleInterest{})
	return result.RowsAffected > 0, result.Error
}

// InterestScore returns the summed interest for one entry.
func (r *Repository) InterestScore(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var score *int
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleInterest{}).
		Select("SUM(vote_type)").
		Where("schedule_id = ?", scheduleID).
		Scan(&score).
		Error
	if err != nil || score == nil {
		return 0, err
	}
	return *score, nil
}

type interestScoreRecord struct {
	ScheduleID uuid.UUID `gorm:"column:schedule_id"`
	Score      int       `gorm:"column:score"`
}

// InterestScores returns summed interest per entry.
func (r *Repository) InterestScores(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	scores := make(map[uuid.UUID]int, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return scores, nil
	}

	var records []interestScoreRecord
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleInterest{}).
		Select("schedule_id, SUM(vote_type) AS score").
		Where("schedule_id IN ?", scheduleIDs).
		Group("schedule_id").
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		scores[record.ScheduleID] = record.Score
	}
	return scores, nil
}

type userInterestRecord struct {
	ScheduleID uuid.UUID      `gorm:"column:schedule_id"`
	VoteType   enums.VoteType `gorm:"column:vote_type"`
}

// UserInterests returns the caller's interest direction per entry.
func (r *Repository) UserInterests(ctx context.Context, scheduleIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]enums.VoteType, error) {
	interests := make(map[uuid.UUID]enums.VoteType, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return interests, nil
	}

	var records []userInterestRecord
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleInterest{}).
		Select("schedule_id, vote_type").
		Where("schedule_id IN ? AND user_id = ?", scheduleIDs, userID).
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		interests[record.ScheduleID] = record.VoteType
	}
	return interests, nil
}
