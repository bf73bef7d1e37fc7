package scheduling

import (
	"context"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// Events receives lifecycle notifications after a write has committed.
// Implementations own their delivery guarantees and error handling; a failed
// notification must never fail the request that triggered it.
type Events interface {
	MeetingCreated(ctx context.Context, m *models.Meeting)
	MeetingUpdated(ctx context.Context, m *models.Meeting)
	MeetingCancelled(ctx context.Context, m *models.Meeting)
	ParticipantInvited(ctx context.Context, m *models.Meeting, p *models.Participant)
	ParticipantResponded(ctx context.Context, m *models.Meeting, p *models.Participant)
}

// NoopEvents drops every notification.
type NoopEvents struct{}

func (NoopEvents) MeetingCreated(context.Context, *models.Meeting)                            {}
func (NoopEvents) MeetingUpdated(context.Context, *models.Meeting)                            {}
func (NoopEvents) MeetingCancelled(context.Context, *models.Meeting)                          {}
func (NoopEvents) ParticipantInvited(context.Context, *models.Meeting, *models.Participant)   {}
func (NoopEvents) ParticipantResponded(context.Context, *models.Meeting, *models.Participant) {}
