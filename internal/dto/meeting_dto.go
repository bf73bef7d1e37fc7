package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
	"github.com/NestyJo/video-chat-backend/internal/scheduling"
)

type ParticipantRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   string     `json:"role"`
}

func (r ParticipantRequest) ToInput() scheduling.ParticipantInput {
	var in scheduling.ParticipantInput
	if r.UserID != nil {
		in = scheduling.RegisteredParticipant(*r.UserID)
	} else {
		in = scheduling.GuestParticipant(r.Email, r.Name)
	}
	if r.Role != "" {
		in = in.WithRole(models.ParticipantRole(r.Role))
	}
	return in
}

type CreateMeetingRequest struct {
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	StartTime           time.Time            `json:"start_time"`
	EndTime             time.Time            `json:"end_time"`
	Timezone            string               `json:"timezone"`
	Location            string               `json:"location"`
	ExternalMeetingLink string               `json:"external_meeting_link"`
	MeetingType         string               `json:"meeting_type"`
	MaxParticipants     *int                 `json:"max_participants"`
	IsRecurring         bool                 `json:"is_recurring"`
	RecurrenceType      string               `json:"recurrence_type"`
	RecurrenceEndDate   *time.Time           `json:"recurrence_end_date"`
	ChannelName         string               `json:"channel_name"`
	Password            string               `json:"password"`
	GeneratePassword    bool                 `json:"generate_password"`
	AllowGuestAccess    bool                 `json:"allow_guest_access"`
	Participants        []ParticipantRequest `json:"participants"`
}

func (r *CreateMeetingRequest) ToInput() scheduling.CreateMeetingInput {
	in := scheduling.CreateMeetingInput{
		Title:               r.Title,
		Description:         r.Description,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		Timezone:            r.Timezone,
		Location:            r.Location,
		ExternalMeetingLink: r.ExternalMeetingLink,
		MeetingType:         models.MeetingType(r.MeetingType),
		MaxParticipants:     r.MaxParticipants,
		IsRecurring:         r.IsRecurring,
		RecurrenceType:      models.RecurrenceType(r.RecurrenceType),
		RecurrenceEndDate:   r.RecurrenceEndDate,
		ChannelName:         r.ChannelName,
		Password:            r.Password,
		GeneratePassword:    r.GeneratePassword,
		AllowGuestAccess:    r.AllowGuestAccess,
	}
	for _, p := range r.Participants {
		in.Participants = append(in.Participants, p.ToInput())
	}
	return in
}

type UpdateMeetingRequest struct {
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	StartTime           *time.Time `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	Timezone            *string    `json:"timezone"`
	Location            *string    `json:"location"`
	ExternalMeetingLink *string    `json:"external_meeting_link"`
	MeetingType         *string    `json:"meeting_type"`
	MaxParticipants     *int       `json:"max_participants"`
	AllowGuestAccess    *bool      `json:"allow_guest_access"`
}

func (r *UpdateMeetingRequest) ToInput() scheduling.UpdateMeetingInput {
	in := scheduling.UpdateMeetingInput{
		Title:               r.Title,
		Description:         r.Description,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		Timezone:            r.Timezone,
		Location:            r.Location,
		ExternalMeetingLink: r.ExternalMeetingLink,
		MaxParticipants:     r.MaxParticipants,
		AllowGuestAccess:    r.AllowGuestAccess,
	}
	if r.MeetingType != nil {
		mt := models.MeetingType(*r.MeetingType)
		in.MeetingType = &mt
	}
	return in
}

type UpdatePasswordRequest struct {
	Password         string `json:"password"`
	GeneratePassword bool   `json:"generate_password"`
	RemovePassword   bool   `json:"remove_password"`
}

type AddParticipantsRequest struct {
	Participants []ParticipantRequest `json:"participants"`
}

func (r *AddParticipantsRequest) ToInputs() []scheduling.ParticipantInput {
	inputs := make([]scheduling.ParticipantInput, 0, len(r.Participants))
	for _, p := range r.Participants {
		inputs = append(inputs, p.ToInput())
	}
	return inputs
}

type RespondRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type JoinRequest struct {
	Password string `json:"password"`
}

type ParticipantResponse struct {
	ID           uuid.UUID  `json:"id"`
	MeetingID    uuid.UUID  `json:"meeting_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Email        string     `json:"email,omitempty"`
	Name         string     `json:"name,omitempty"`
	Status       string     `json:"status"`
	Role         string     `json:"role"`
	IsGuest      bool       `json:"is_guest"`
	ResponseDate *time.Time `json:"response_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	JoinedAt     *time.Time `json:"joined_at,omitempty"`
	LeftAt       *time.Time `json:"left_at,omitempty"`
}

func NewParticipantResponse(p *models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:           p.ID,
		MeetingID:    p.MeetingID,
		UserID:       p.UserID,
		Email:        p.Email,
		Name:         p.Name,
		Status:       string(p.Status),
		Role:         string(p.Role),
		IsGuest:      p.IsGuest(),
		ResponseDate: p.ResponseDate,
		Notes:        p.Notes,
		JoinedAt:     p.JoinedAt,
		LeftAt:       p.LeftAt,
	}
}

func NewParticipantResponses(participants []models.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, NewParticipantResponse(&participants[i]))
	}
	return out
}

// MeetingResponse is the wire shape of a meeting. Status is the derived live
// status, not the stored column. Password is only filled for the organizer,
// right after it was set or generated.
type MeetingResponse struct {
	ID                  uuid.UUID     `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	StartTime           time.Time     `json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	Timezone            string        `json:"timezone"`
	Location            string        `json:"location,omitempty"`
	ExternalMeetingLink string        `json:"external_meeting_link,omitempty"`
	MeetingType         string        `json:"meeting_type"`
	Status              string        `json:"status"`
	MaxParticipants     *int          `json:"max_participants,omitempty"`
	IsRecurring         bool          `json:"is_recurring"`
	RecurrenceType      string        `json:"recurrence_type,omitempty"`
	RecurrenceEndDate   *time.Time    `json:"recurrence_end_date,omitempty"`
	OrganizerID         uuid.UUID     `json:"organizer_id"`
	Organizer           *UserResponse `json:"organizer,omitempty"`
	ChannelName         string        `json:"channel_name,omitempty"`
	ProviderAppID       string        `json:"provider_app_id,omitempty"`
	IsPasswordProtected bool          `json:"is_password_protected"`
	Password            *string       `json:"password,omitempty"`
	AllowGuestAccess    bool          `json:"allow_guest_access"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func NewMeetingResponse(m *models.Meeting, now time.Time, includePassword bool) MeetingResponse {
	resp := MeetingResponse{
		ID:                  m.ID,
		Title:               m.Title,
		Description:         m.Description,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		Timezone:            m.Timezone,
		Location:            m.Location,
		ExternalMeetingLink: m.ExternalMeetingLink,
		MeetingType:         string(m.MeetingType),
		Status:              string(m.EffectiveStatus(now)),
		MaxParticipants:     m.MaxParticipants,
		IsRecurring:         m.IsRecurring,
		RecurrenceType:      string(m.RecurrenceType),
		RecurrenceEndDate:   m.RecurrenceEndDate,
		OrganizerID:         m.OrganizerID,
		ChannelName:         m.ChannelName,
		ProviderAppID:       m.ProviderAppID,
		IsPasswordProtected: m.IsPasswordProtected,
		AllowGuestAccess:    m.AllowGuestAccess,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.Organizer != nil {
		organizer := NewUserResponse(m.Organizer)
		resp.Organizer = &organizer
	}
	if includePassword {
		resp.Password = m.Password
	}
	return resp
}

func NewMeetingResponses(meetings []models.Meeting, now time.Time) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(meetings))
	for i := range meetings {
		out = append(out, NewMeetingResponse(&meetings[i], now, false))
	}
	return out
}

type MeetingListResponse struct {
	Meetings []MeetingResponse `json:"meetings"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// MeetingSummary is the condensed shape used inside availability conflicts.
type MeetingSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type SlotResponse struct {
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Available bool             `json:"available"`
	Conflicts []MeetingSummary `json:"conflicts,omitempty"`
}

type AvailabilityResponse struct {
	Date            string         `json:"date"`
	DurationMinutes int            `json:"duration_minutes"`
	StartHour       int            `json:"start_hour"`
	EndHour         int            `json:"end_hour"`
	Slots           []SlotResponse `json:"slots"`
}

func NewSlotResponses(slots []scheduling.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		slot := SlotResponse{Start: s.Start, End: s.End, Available: s.Available}
		for _, c := range s.Conflicts {
			slot.Conflicts = append(slot.Conflicts, MeetingSummary{
				ID:        c.ID,
				Title:     c.Title,
				StartTime: c.StartTime,
				EndTime:   c.EndTime,
			})
		}
		out = append(out, slot)
	}
	return out
}

type ShareLinkResponse struct {
	ShareLink string     `json:"share_link"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
