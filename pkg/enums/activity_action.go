package enums

import "fmt"

// ActivityAction is the closed set of events recorded in a group feed.
type ActivityAction string

const (
	ActivityAddedMovie     ActivityAction = "added_movie"
	ActivityRemovedMovie   ActivityAction = "removed_movie"
	ActivityMarkedWatched  ActivityAction = "marked_watched"
	ActivityShowedInterest ActivityAction = "showed_interest"
	ActivityJoinedGroup    ActivityAction = "joined_group"
	ActivityScheduledMovie ActivityAction = "scheduled_movie"
	ActivityUpdatedGroup   ActivityAction = "updated_group"
	ActivityRemovedDate    ActivityAction = "removed_date"
)

var validActivityActions = []ActivityAction{
	ActivityAddedMovie,
	ActivityRemovedMovie,
	ActivityMarkedWatched,
	ActivityShowedInterest,
	ActivityJoinedGroup,
	ActivityScheduledMovie,
	ActivityUpdatedGroup,
	ActivityRemovedDate,
}

func (a ActivityAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityAction.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into an ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
