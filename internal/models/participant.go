package models

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantStatusInvited    ParticipantStatus = "invited"
	ParticipantStatusAccepted   ParticipantStatus = "accepted"
	ParticipantStatusDeclined   ParticipantStatus = "declined"
	ParticipantStatusTentative  ParticipantStatus = "tentative"
	ParticipantStatusNoResponse ParticipantStatus = "no_response"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantStatusInvited, ParticipantStatusAccepted, ParticipantStatusDeclined,
		ParticipantStatusTentative, ParticipantStatusNoResponse:
		return true
	}
	return false
}

type ParticipantRole string

const (
	ParticipantRoleOrganizer ParticipantRole = "organizer"
	ParticipantRolePresenter ParticipantRole = "presenter"
	ParticipantRoleAttendee  ParticipantRole = "attendee"
	ParticipantRoleOptional  ParticipantRole = "optional"
)

func (r ParticipantRole) Valid() bool {
	switch r {
	case ParticipantRoleOrganizer, ParticipantRolePresenter, ParticipantRoleAttendee, ParticipantRoleOptional:
		return true
	}
	return false
}

// Participant links a meeting to an invitee. UserID is nil for guests, who are
// identified by email instead and can never log in.
type Participant struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MeetingID    uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_meeting_user" json:"meeting_id"`
	UserID       *uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_meeting_user" json:"user_id,omitempty"`
	Email        string            `gorm:"size:255" json:"email,omitempty"`
	Name         string            `gorm:"size:200" json:"name,omitempty"`
	Status       ParticipantStatus `gorm:"size:20;default:'invited'" json:"status"`
	Role         ParticipantRole   `gorm:"size:20;default:'attendee'" json:"role"`
	JoinedAt     *time.Time        `json:"joined_at,omitempty"`
	LeftAt       *time.Time        `json:"left_at,omitempty"`
	ResponseDate *time.Time        `json:"response_date,omitempty"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsGuest reports whether the participant has no account.
func (p *Participant) IsGuest() bool {
	return p.UserID == nil
}
