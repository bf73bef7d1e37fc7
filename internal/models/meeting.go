package models

import (
	"time"

	"github.com/google/uuid"
)

type MeetingType string

const (
	MeetingTypeOneOnOne     MeetingType = "one_on_one"
	MeetingTypeGroup        MeetingType = "group"
	MeetingTypePresentation MeetingType = "presentation"
	MeetingTypeWorkshop     MeetingType = "workshop"
	MeetingTypeOther        MeetingType = "other"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingTypeOneOnOne, MeetingTypeGroup, MeetingTypePresentation, MeetingTypeWorkshop, MeetingTypeOther:
		return true
	}
	return false
}

type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingStatusScheduled, MeetingStatusInProgress, MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Meeting is a scheduled conference. ChannelName and ProviderAppID address the
// external conferencing provider; this service never interprets them.
//
// Password is the shared join secret, compared as an exact string and never
// hashed. It is excluded from JSON so no response or error path can echo it.
type Meeting struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title               string         `gorm:"size:200;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description,omitempty"`
	StartTime           time.Time      `gorm:"not null;index" json:"start_time"`
	EndTime             time.Time      `gorm:"not null" json:"end_time"`
	Timezone            string         `gorm:"size:64;default:'UTC'" json:"timezone"`
	Location            string         `gorm:"size:255" json:"location,omitempty"`
	ExternalMeetingLink string         `gorm:"size:500" json:"external_meeting_link,omitempty"`
	MeetingType         MeetingType    `gorm:"size:20;default:'other'" json:"meeting_type"`
	Status              MeetingStatus  `gorm:"size:20;default:'scheduled';index" json:"status"`
	MaxParticipants     *int           `json:"max_participants,omitempty"`
	IsRecurring         bool           `gorm:"default:false" json:"is_recurring"`
	RecurrenceType      RecurrenceType `gorm:"size:20;default:'none'" json:"recurrence_type"`
	RecurrenceEndDate   *time.Time     `json:"recurrence_end_date,omitempty"`
	OrganizerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizer_id"`
	ChannelName         string         `gorm:"size:100;uniqueIndex" json:"channel_name,omitempty"`
	ProviderAppID       string         `gorm:"size:100" json:"provider_app_id,omitempty"`
	Password            *string        `gorm:"size:50" json:"-"`
	IsPasswordProtected bool           `gorm:"default:false" json:"is_password_protected"`
	AllowGuestAccess    bool           `gorm:"default:false" json:"allow_guest_access"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	Organizer    *User         `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Participants []Participant `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

// EffectiveStatus derives the live status from the clock. Only "cancelled" is a
// persisted transition; in_progress and completed follow from time comparison.
func (m *Meeting) EffectiveStatus(now time.Time) MeetingStatus {
	switch m.Status {
	case MeetingStatusCancelled:
		return MeetingStatusCancelled
	case MeetingStatusCompleted:
		return MeetingStatusCompleted
	}
	if !now.Before(m.EndTime) {
		return MeetingStatusCompleted
	}
	if !now.Before(m.StartTime) {
		return MeetingStatusInProgress
	}
	return MeetingStatusScheduled
}

// IsModifiable reports whether the meeting may still be edited: scheduled and
// not yet started.
func (m *Meeting) IsModifiable(now time.Time) bool {
	return m.Status == MeetingStatusScheduled && m.StartTime.After(now)
}

// Overlaps checks the half-open interval [start, end) against the meeting's
// own [StartTime, EndTime). Back-to-back meetings do not overlap.
func (m *Meeting) Overlaps(start, end time.Time) bool {
	return m.StartTime.Before(end) && m.EndTime.After(start)
}
