package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// JoinInfo is what a granted caller needs to enter the conference. The stored
// meeting password never appears here; callers who passed the password check
// already know it.
type JoinInfo struct {
	MeetingID           uuid.UUID `json:"meeting_id"`
	Title               string    `json:"title"`
	ChannelName         string    `json:"channel_name"`
	ProviderAppID       string    `json:"provider_app_id,omitempty"`
	ExternalMeetingLink string    `json:"external_meeting_link,omitempty"`
	PasswordRequired    bool      `json:"password_required"`
	GuestAccess         bool      `json:"guest_access"`
}

// AccessGate decides whether a caller, authenticated or guest, may join a
// meeting. It is a read-only check; recording attendance is the caller's
// concern.
type AccessGate struct {
	meetings     MeetingStore
	participants ParticipantStore
	now          func() time.Time
}

func NewAccessGate(meetings MeetingStore, participants ParticipantStore, now func() time.Time) *AccessGate {
	if now == nil {
		now = time.Now
	}
	return &AccessGate{meetings: meetings, participants: participants, now: now}
}

// ValidateAccess runs the join checks in order and stops at the first failure:
// meeting exists, not cancelled, not ended, password matches when required,
// guest policy permits non-participants. callerID is nil for unauthenticated
// guests. Password comparison is exact string equality against the stored
// value.
func (g *AccessGate) ValidateAccess(ctx context.Context, meetingID uuid.UUID, password string, callerID *uuid.UUID) (*JoinInfo, error) {
	m, err := g.meetings.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NotFoundf("meeting not found")
	}
	return g.validate(ctx, m, password, callerID)
}

// ValidateChannelAccess is ValidateAccess keyed by channel name, for join
// links that carry the channel instead of the meeting id.
func (g *AccessGate) ValidateChannelAccess(ctx context.Context, channel string, password string, callerID *uuid.UUID) (*JoinInfo, error) {
	m, err := g.meetings.FindMeetingByChannel(ctx, channel)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NotFoundf("meeting not found")
	}
	return g.validate(ctx, m, password, callerID)
}

func (g *AccessGate) validate(ctx context.Context, m *models.Meeting, password string, callerID *uuid.UUID) (*JoinInfo, error) {
	switch m.EffectiveStatus(g.now()) {
	case models.MeetingStatusCancelled:
		return nil, AccessDeniedf("meeting has been cancelled")
	case models.MeetingStatusCompleted:
		return nil, AccessDeniedf("meeting has already ended")
	}

	if m.IsPasswordProtected {
		if password == "" {
			return nil, AccessDeniedf("meeting password required")
		}
		if m.Password == nil || password != *m.Password {
			return nil, AccessDeniedf("invalid meeting password")
		}
	}

	isParticipant := false
	if callerID != nil {
		p, err := g.participants.FindParticipantByUser(ctx, m.ID, *callerID)
		if err != nil {
			return nil, err
		}
		isParticipant = p != nil
	}
	if !isParticipant && !m.AllowGuestAccess {
		return nil, AccessDeniedf("guest access is not allowed for this meeting")
	}

	return &JoinInfo{
		MeetingID:           m.ID,
		Title:               m.Title,
		ChannelName:         m.ChannelName,
		ProviderAppID:       m.ProviderAppID,
		ExternalMeetingLink: m.ExternalMeetingLink,
		PasswordRequired:    m.IsPasswordProtected,
		GuestAccess:         m.AllowGuestAccess,
	}, nil
}
