package invites

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/db/models"
)

// CreateInviteInput carries the payload for minting an invite link.
type CreateInviteInput struct {
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   *int       `json:"max_uses" validate:"omitempty,gt=0,lte=1000"`
}

// InviteDTO is the full invite representation shown to group managers.
type InviteDTO struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"group_id"`
	Code      string     `json:"code"`
	CreatedBy uuid.UUID  `json:"created_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxUses   *int       `json:"max_uses,omitempty"`
	UsesCount int        `json:"uses_count"`
	CreatedAt time.Time  `json:"created_at"`
}

// InvitePreviewDTO is the public shape returned when resolving a code, shown
// before the viewer decides to join.
type InvitePreviewDTO struct {
	Code             string     `json:"code"`
	GroupName        string     `json:"group_name"`
	GroupDescription *string    `json:"group_description,omitempty"`
	MemberCount      int        `json:"member_count"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// AcceptResultDTO reports the membership created by accepting an invite.
type AcceptResultDTO struct {
	GroupID   uuid.UUID `json:"group_id"`
	GroupName string    `json:"group_name"`
	MemberID  uuid.UUID `json:"member_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

func toDTO(m models.InviteLink) InviteDTO {
	return InviteDTO{
		ID:        m.ID,
		GroupID:   m.GroupID,
		Code:      m.Code,
		CreatedBy: m.CreatedBy,
		ExpiresAt: m.ExpiresAt,
		MaxUses:   m.MaxUses,
		UsesCount: m.UsesCount,
		CreatedAt: m.CreatedAt,
	}
}
