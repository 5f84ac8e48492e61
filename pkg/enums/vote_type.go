package enums

import "fmt"

// VoteType is a signed thumbs up/down reaction on a schedule.
type VoteType int

const (
	VoteTypeDown VoteType = -1
	VoteTypeUp   VoteType = 1
)

// IsValid reports whether the value is a known VoteType.
func (v VoteType) IsValid() bool {
	return v == VoteTypeDown || v == VoteTypeUp
}

// ParseVoteType converts raw input into a VoteType.
func ParseVoteType(value int) (VoteType, error) {
	v := VoteType(value)
	if !v.IsValid() {
		return 0, fmt.Errorf("invalid vote type %d", value)
	}
	return v, nil
}
