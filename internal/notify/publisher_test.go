package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

func TestMeetingEventCarriesCoreFields(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	m := &models.Meeting{
		ID:          uuid.New(),
		OrganizerID: uuid.New(),
		Title:       "Standup",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		Status:      models.MeetingStatusScheduled,
		ChannelName: "standup-20260314-abc123",
	}

	e := meetingEvent(m)
	assert.Equal(t, m.ID, e.MeetingID)
	assert.Equal(t, m.OrganizerID, e.OrganizerID)
	assert.Equal(t, "Standup", e.Title)
	assert.Equal(t, m.StartTime, e.StartTime)
	assert.Equal(t, m.EndTime, e.EndTime)
	assert.Equal(t, models.MeetingStatusScheduled, e.Status)
	assert.Nil(t, e.Participant)
}

func TestParticipantEventKeepsGuestIdentity(t *testing.T) {
	p := &models.Participant{
		ID:     uuid.New(),
		Email:  "guest@example.com",
		Status: models.ParticipantStatusInvited,
		Role:   models.ParticipantRoleAttendee,
	}

	e := participantEvent(p)
	assert.Nil(t, e.UserID)
	assert.Equal(t, "guest@example.com", e.Email)
	assert.Equal(t, models.ParticipantStatusInvited, e.Status)
}

func TestSubjectNaming(t *testing.T) {
	p := &Publisher{prefix: "meetings"}
	assert.Equal(t, "meetings.created", p.subjectFor(KindMeetingCreated))
	assert.Equal(t, "meetings.participant.responded", p.subjectFor(KindParticipantResponded))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.URL)
	assert.Equal(t, "meetings", cfg.SubjectPrefix)
	assert.Positive(t, cfg.MaxReconnects)
}
