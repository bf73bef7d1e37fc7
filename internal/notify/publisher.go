package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// Event kinds appended to the subject prefix.
const (
	KindMeetingCreated       = "created"
	KindMeetingUpdated       = "updated"
	KindMeetingCancelled     = "cancelled"
	KindParticipantInvited   = "participant.invited"
	KindParticipantResponded = "participant.responded"
)

// Event is the wire shape of one meeting lifecycle notification.
type Event struct {
	Kind        string               `json:"kind"`
	MeetingID   uuid.UUID            `json:"meeting_id"`
	OrganizerID uuid.UUID            `json:"organizer_id"`
	Title       string               `json:"title"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	Status      models.MeetingStatus `json:"status"`
	ChannelName string               `json:"channel_name,omitempty"`
	Participant *ParticipantEvent    `json:"participant,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// ParticipantEvent rides along on participant kinds.
type ParticipantEvent struct {
	ID     uuid.UUID                `json:"id"`
	UserID *uuid.UUID               `json:"user_id,omitempty"`
	Email  string                   `json:"email,omitempty"`
	Status models.ParticipantStatus `json:"status"`
	Role   models.ParticipantRole   `json:"role"`
}

// Config holds NATS publisher configuration.
type Config struct {
	URL             string
	SubjectPrefix   string
	ConnectTimeout  time.Duration
	ReconnectWait   time.Duration
	MaxReconnects   int
	PingInterval    time.Duration
	MaxPingsOut     int
	ReconnectBuffer int
}

// DefaultConfig returns the default NATS configuration.
func DefaultConfig() *Config {
	return &Config{
		URL:             nats.DefaultURL,
		SubjectPrefix:   "meetings",
		ConnectTimeout:  5 * time.Second,
		ReconnectWait:   2 * time.Second,
		MaxReconnects:   10,
		PingInterval:    2 * time.Minute,
		MaxPingsOut:     2,
		ReconnectBuffer: 5 * 1024 * 1024,
	}
}

// Publisher pushes meeting lifecycle events to NATS. It satisfies the
// scheduling event sink contract: publish failures are logged and swallowed,
// they never fail the request that produced the event.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewPublisher connects to NATS with reconnect handling and returns a
// publisher for meeting events.
func NewPublisher(config *Config, logger *slog.Logger) (*Publisher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	options := []nats.Option{
		nats.Timeout(config.ConnectTimeout),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.PingInterval(config.PingInterval),
		nats.MaxPingsOutstanding(config.MaxPingsOut),
		nats.ReconnectBufSize(config.ReconnectBuffer),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(config.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", config.URL, err)
	}

	logger.Info("NATS publisher initialized",
		"url", config.URL,
		"subject_prefix", config.SubjectPrefix,
		"connected_url", conn.ConnectedUrl())

	return &Publisher{conn: conn, prefix: config.SubjectPrefix, logger: logger}, nil
}

func (p *Publisher) MeetingCreated(ctx context.Context, m *models.Meeting) {
	p.publish(ctx, KindMeetingCreated, meetingEvent(m))
}

func (p *Publisher) MeetingUpdated(ctx context.Context, m *models.Meeting) {
	p.publish(ctx, KindMeetingUpdated, meetingEvent(m))
}

func (p *Publisher) MeetingCancelled(ctx context.Context, m *models.Meeting) {
	p.publish(ctx, KindMeetingCancelled, meetingEvent(m))
}

func (p *Publisher) ParticipantInvited(ctx context.Context, m *models.Meeting, part *models.Participant) {
	e := meetingEvent(m)
	e.Participant = participantEvent(part)
	p.publish(ctx, KindParticipantInvited, e)
}

func (p *Publisher) ParticipantResponded(ctx context.Context, m *models.Meeting, part *models.Participant) {
	e := meetingEvent(m)
	e.Participant = participantEvent(part)
	p.publish(ctx, KindParticipantResponded, e)
}

func (p *Publisher) publish(ctx context.Context, kind string, event Event) {
	if p.conn == nil || p.conn.IsClosed() {
		p.logger.Warn("dropping meeting event, NATS connection unavailable", "kind", kind)
		return
	}

	event.Kind = kind
	event.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal meeting event", "error", err, "kind", kind)
		return
	}

	subject := p.subjectFor(kind)
	select {
	case <-ctx.Done():
		p.logger.Warn("dropping meeting event, request context done", "subject", subject)
	default:
		if err := p.conn.Publish(subject, data); err != nil {
			p.logger.Error("publish meeting event", "error", err, "subject", subject)
			return
		}
		p.logger.Debug("published meeting event", "subject", subject, "meeting_id", event.MeetingID)
	}
}

func (p *Publisher) subjectFor(kind string) string {
	return p.prefix + "." + kind
}

// IsHealthy reports whether the NATS connection is usable.
func (p *Publisher) IsHealthy() error {
	if p.conn == nil {
		return fmt.Errorf("NATS connection is nil")
	}
	if p.conn.IsClosed() {
		return fmt.Errorf("NATS connection is closed")
	}
	if !p.conn.IsConnected() {
		return fmt.Errorf("NATS is not connected")
	}
	return nil
}

// Close flushes pending events and closes the connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		p.logger.Warn("flush NATS messages on close", "error", err)
	}
	p.conn.Close()
	p.logger.Info("NATS publisher closed")
}

func meetingEvent(m *models.Meeting) Event {
	return Event{
		MeetingID:   m.ID,
		OrganizerID: m.OrganizerID,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Status:      m.Status,
		ChannelName: m.ChannelName,
	}
}

func participantEvent(p *models.Participant) *ParticipantEvent {
	return &ParticipantEvent{
		ID:     p.ID,
		UserID: p.UserID,
		Email:  p.Email,
		Status: p.Status,
		Role:   p.Role,
	}
}
