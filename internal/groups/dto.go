package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/pkg/enums"
)

// CreateGroupInput carries the payload for creating a group.
type CreateGroupInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateGroupInput carries the mutable group fields. Nil pointers leave the column untouched.
type UpdateGroupInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// AddMemberInput carries the payload for adding a member directly.
type AddMemberInput struct {
	UserID uuid.UUID        `json:"user_id" validate:"required"`
	Role   enums.MemberRole `json:"role" validate:"omitempty"`
}

// GroupDTO is the public representation of a group, scoped to the requesting member.
type GroupDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	CreatedBy   uuid.UUID        `json:"created_by"`
	Role        enums.MemberRole `json:"role"`
	MemberCount int              `json:"member_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MemberDTO is the public representation of a group member.
type MemberDTO struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Role      enums.MemberRole `json:"role"`
	FullName  *string          `json:"full_name,omitempty"`
	Email     string           `json:"email"`
	AvatarURL *string          `json:"avatar_url,omitempty"`
	JoinedAt  time.Time        `json:"joined_at"`
}
