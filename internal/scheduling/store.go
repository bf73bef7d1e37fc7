package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// MeetingFilter narrows ListMeetings. ActorID is mandatory: only meetings the
// actor organizes, or attends as an accepted participant, are visible.
type MeetingFilter struct {
	ActorID uuid.UUID
	From    *time.Time
	To      *time.Time
	Status  models.MeetingStatus // empty matches any status
	Type    models.MeetingType   // empty matches any type
	Limit   int
	Offset  int
}

// MeetingStore persists meetings. Find methods return (nil, nil) when no row
// matches; errors are reserved for store failures.
type MeetingStore interface {
	CreateMeeting(ctx context.Context, m *models.Meeting) error
	FindMeetingByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	FindMeetingByChannel(ctx context.Context, channel string) (*models.Meeting, error)
	SaveMeeting(ctx context.Context, m *models.Meeting) error
	ListMeetings(ctx context.Context, f MeetingFilter) ([]models.Meeting, error)
	// FindMeetingsInRange returns the non-cancelled meetings overlapping the
	// half-open window [start, end) where the user is the organizer or an
	// accepted participant, ordered by start time.
	FindMeetingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Meeting, error)
}

// ParticipantStore persists participant rows. Find methods return (nil, nil)
// when no row matches. Email lookups are case-insensitive.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, p *models.Participant) error
	FindParticipantByUser(ctx context.Context, meetingID, userID uuid.UUID) (*models.Participant, error)
	FindParticipantByEmail(ctx context.Context, meetingID uuid.UUID, email string) (*models.Participant, error)
	SaveParticipant(ctx context.Context, p *models.Participant) error
	ListParticipants(ctx context.Context, meetingID uuid.UUID) ([]models.Participant, error)
}

// UserDirectory resolves registered accounts for participant enrollment.
// Find methods return (nil, nil) when no account matches.
type UserDirectory interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store bundles everything the lifecycle manager reads and writes. InTx runs
// fn against a store whose writes commit or roll back as one unit; fn
// returning an error rolls the transaction back and InTx returns that error
// unchanged.
type Store interface {
	MeetingStore
	ParticipantStore
	UserDirectory
	InTx(ctx context.Context, fn func(Store) error) error
}
