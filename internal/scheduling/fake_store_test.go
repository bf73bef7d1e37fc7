package scheduling

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// memoryStore is an in-memory Store shared by the package tests. InTx keeps a
// snapshot so a failing operation rolls back like a real transaction.
type memoryStore struct {
	meetings     map[uuid.UUID]*models.Meeting
	participants []*models.Participant
	users        map[uuid.UUID]*models.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		meetings: make(map[uuid.UUID]*models.Meeting),
		users:    make(map[uuid.UUID]*models.User),
	}
}

func (s *memoryStore) addUser(username, email string) uuid.UUID {
	u := &models.User{ID: uuid.New(), Username: username, Email: email, Active: true}
	s.users[u.ID] = u
	return u.ID
}

func (s *memoryStore) participantCount(meetingID uuid.UUID) int {
	n := 0
	for _, p := range s.participants {
		if p.MeetingID == meetingID {
			n++
		}
	}
	return n
}

func (s *memoryStore) clone() *memoryStore {
	cp := newMemoryStore()
	for id, m := range s.meetings {
		mc := *m
		cp.meetings[id] = &mc
	}
	for _, p := range s.participants {
		pc := *p
		cp.participants = append(cp.participants, &pc)
	}
	for id, u := range s.users {
		uc := *u
		cp.users[id] = &uc
	}
	return cp
}

func (s *memoryStore) InTx(_ context.Context, fn func(Store) error) error {
	snapshot := s.clone()
	if err := fn(s); err != nil {
		*s = *snapshot
		return err
	}
	return nil
}

func (s *memoryStore) CreateMeeting(_ context.Context, m *models.Meeting) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.meetings[m.ID] = &cp
	return nil
}

func (s *memoryStore) FindMeetingByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *memoryStore) FindMeetingByChannel(_ context.Context, channel string) (*models.Meeting, error) {
	for _, m := range s.meetings {
		if m.ChannelName == channel {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) SaveMeeting(_ context.Context, m *models.Meeting) error {
	cp := *m
	s.meetings[m.ID] = &cp
	return nil
}

func (s *memoryStore) ListMeetings(_ context.Context, f MeetingFilter) ([]models.Meeting, error) {
	var out []models.Meeting
	for _, m := range s.meetings {
		if !s.visibleTo(m, f.ActorID) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Type != "" && m.MeetingType != f.Type {
			continue
		}
		if f.From != nil && !m.EndTime.After(*f.From) {
			continue
		}
		if f.To != nil && !m.StartTime.Before(*f.To) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memoryStore) FindMeetingsInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]models.Meeting, error) {
	var out []models.Meeting
	for _, m := range s.meetings {
		if m.Status == models.MeetingStatusCancelled {
			continue
		}
		if !m.Overlaps(start, end) {
			continue
		}
		if !s.visibleTo(m, userID) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *memoryStore) visibleTo(m *models.Meeting, actorID uuid.UUID) bool {
	if m.OrganizerID == actorID {
		return true
	}
	for _, p := range s.participants {
		if p.MeetingID == m.ID && p.UserID != nil && *p.UserID == actorID && p.Status == models.ParticipantStatusAccepted {
			return true
		}
	}
	return false
}

func (s *memoryStore) CreateParticipant(_ context.Context, p *models.Participant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.ParticipantStatusInvited
	}
	if p.Role == "" {
		p.Role = models.ParticipantRoleAttendee
	}
	cp := *p
	s.participants = append(s.participants, &cp)
	return nil
}

func (s *memoryStore) FindParticipantByUser(_ context.Context, meetingID, userID uuid.UUID) (*models.Participant, error) {
	for _, p := range s.participants {
		if p.MeetingID == meetingID && p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindParticipantByEmail(_ context.Context, meetingID uuid.UUID, email string) (*models.Participant, error) {
	for _, p := range s.participants {
		if p.MeetingID == meetingID && p.Email != "" && strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) SaveParticipant(_ context.Context, p *models.Participant) error {
	for i, existing := range s.participants {
		if existing.ID == p.ID {
			cp := *p
			s.participants[i] = &cp
			return nil
		}
	}
	cp := *p
	s.participants = append(s.participants, &cp)
	return nil
}

func (s *memoryStore) ListParticipants(_ context.Context, meetingID uuid.UUID) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range s.participants {
		if p.MeetingID == meetingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memoryStore) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// stubGenerator produces deterministic channel names and passwords.
type stubGenerator struct{}

func (stubGenerator) ChannelName(title string) string {
	return "chan-" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
}

func (stubGenerator) Password(length int) string {
	return strings.Repeat("p", length)
}

func (stubGenerator) ValidatePassword(password string) []string {
	var errs []string
	if len(password) < 4 {
		errs = append(errs, "must be at least 4 characters")
	}
	if len(password) > 50 {
		errs = append(errs, "must be at most 50 characters")
	}
	return errs
}

// recordingEvents counts lifecycle notifications.
type recordingEvents struct {
	created   int
	updated   int
	cancelled int
	invited   int
	responded int
}

func (r *recordingEvents) MeetingCreated(context.Context, *models.Meeting)   { r.created++ }
func (r *recordingEvents) MeetingUpdated(context.Context, *models.Meeting)   { r.updated++ }
func (r *recordingEvents) MeetingCancelled(context.Context, *models.Meeting) { r.cancelled++ }
func (r *recordingEvents) ParticipantInvited(context.Context, *models.Meeting, *models.Participant) {
	r.invited++
}
func (r *recordingEvents) ParticipantResponded(context.Context, *models.Meeting, *models.Participant) {
	r.responded++
}
