package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NestyJo/video-chat-backend/internal/models"
	"github.com/NestyJo/video-chat-backend/internal/scheduling"
)

// GormStore implements the scheduling store contracts on top of GORM.
// Absent rows surface as (nil, nil), never as gorm.ErrRecordNotFound.
type GormStore struct {
	db *gorm.DB
}

var _ scheduling.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InTx runs fn against a store bound to one database transaction.
func (s *GormStore) InTx(ctx context.Context, fn func(scheduling.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (s *GormStore) FindMeetingByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	var m models.Meeting
	err := s.db.WithContext(ctx).Preload("Organizer").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) FindMeetingByChannel(ctx context.Context, channel string) (*models.Meeting, error) {
	var m models.Meeting
	err := s.db.WithContext(ctx).First(&m, "channel_name = ?", channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) SaveMeeting(ctx context.Context, m *models.Meeting) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

func (s *GormStore) ListMeetings(ctx context.Context, f scheduling.MeetingFilter) ([]models.Meeting, error) {
	q := s.db.WithContext(ctx).Model(&models.Meeting{}).
		Where("organizer_id = ? OR id IN (?)", f.ActorID, s.acceptedMeetingIDs(f.ActorID))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("meeting_type = ?", f.Type)
	}
	if f.From != nil {
		q = q.Where("end_time > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Meeting
	err := q.Preload("Organizer").Order("start_time ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) FindMeetingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Meeting, error) {
	var out []models.Meeting
	err := s.db.WithContext(ctx).
		Where("status <> ?", models.MeetingStatusCancelled).
		Where("start_time < ? AND end_time > ?", end, start).
		Where("organizer_id = ? OR id IN (?)", userID, s.acceptedMeetingIDs(userID)).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

// acceptedMeetingIDs is the subquery for meetings the user attends as an
// accepted participant.
func (s *GormStore) acceptedMeetingIDs(userID uuid.UUID) *gorm.DB {
	return s.db.Model(&models.Participant{}).
		Select("meeting_id").
		Where("user_id = ? AND status = ?", userID, models.ParticipantStatusAccepted)
}

func (s *GormStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *GormStore) FindParticipantByUser(ctx context.Context, meetingID, userID uuid.UUID) (*models.Participant, error) {
	var p models.Participant
	err := s.db.WithContext(ctx).First(&p, "meeting_id = ? AND user_id = ?", meetingID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) FindParticipantByEmail(ctx context.Context, meetingID uuid.UUID, email string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.WithContext(ctx).
		First(&p, "meeting_id = ? AND email <> '' AND LOWER(email) = LOWER(?)", meetingID, email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) SaveParticipant(ctx context.Context, p *models.Participant) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (s *GormStore) ListParticipants(ctx context.Context, meetingID uuid.UUID) ([]models.Participant, error) {
	var out []models.Participant
	err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Preload("User").
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "LOWER(email) = LOWER(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
