package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

const (
	MaxMeetingDuration    = 8 * time.Hour
	MaxChannelNameLength  = 100
	DefaultPasswordLength = 8

	defaultListLimit = 50
	maxListLimit     = 200
)

// Generator provisions conference channel names and join passwords.
type Generator interface {
	ChannelName(title string) string
	Password(length int) string
	// ValidatePassword returns the policy violations for a candidate join
	// password, empty when it is acceptable.
	ValidatePassword(password string) []string
}

// ParticipantInput identifies one invitee: a registered account or an external
// guest. Build values with RegisteredParticipant or GuestParticipant; the zero
// value is rejected.
type ParticipantInput struct {
	userID *uuid.UUID
	email  string
	name   string
	role   models.ParticipantRole
}

func RegisteredParticipant(userID uuid.UUID) ParticipantInput {
	return ParticipantInput{userID: &userID}
}

func GuestParticipant(email, name string) ParticipantInput {
	return ParticipantInput{email: email, name: name}
}

// WithRole sets a role other than the default attendee. The organizer role is
// reserved for the meeting creator and cannot be assigned here.
func (p ParticipantInput) WithRole(role models.ParticipantRole) ParticipantInput {
	p.role = role
	return p
}

// CreateMeetingInput carries the already-parsed request fields for a new
// meeting. Zero values mean "not provided".
type CreateMeetingInput struct {
	Title               string
	Description         string
	StartTime           time.Time
	EndTime             time.Time
	Timezone            string
	Location            string
	ExternalMeetingLink string
	MeetingType         models.MeetingType
	MaxParticipants     *int
	IsRecurring         bool
	RecurrenceType      models.RecurrenceType
	RecurrenceEndDate   *time.Time
	ChannelName         string
	Password            string
	GeneratePassword    bool
	AllowGuestAccess    bool
	Participants        []ParticipantInput
}

// UpdateMeetingInput is a partial update: nil fields stay untouched.
type UpdateMeetingInput struct {
	Title               *string
	Description         *string
	StartTime           *time.Time
	EndTime             *time.Time
	Timezone            *string
	Location            *string
	ExternalMeetingLink *string
	MeetingType         *models.MeetingType
	MaxParticipants     *int
	AllowGuestAccess    *bool
}

// UpdatePasswordInput selects exactly one password action.
type UpdatePasswordInput struct {
	Password         string
	GeneratePassword bool
	RemovePassword   bool
}

// LifecycleConfig tunes a Lifecycle. The zero value is usable.
type LifecycleConfig struct {
	// ProviderAppID is stamped on every meeting so clients can address the
	// external conferencing provider. Opaque to this service.
	ProviderAppID string
	// PasswordLength of generated join passwords. Defaults to 8.
	PasswordLength int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Lifecycle orchestrates meeting creation, mutation, cancellation and
// participant management. Every operation validates, runs its writes in one
// store transaction, and surfaces failures as typed errors.
type Lifecycle struct {
	store          Store
	gen            Generator
	events         Events
	providerAppID  string
	passwordLength int
	now            func() time.Time
}

func NewLifecycle(store Store, gen Generator, events Events, cfg LifecycleConfig) *Lifecycle {
	if cfg.PasswordLength <= 0 {
		cfg.PasswordLength = DefaultPasswordLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if events == nil {
		events = NoopEvents{}
	}
	return &Lifecycle{
		store:          store,
		gen:            gen,
		events:         events,
		providerAppID:  cfg.ProviderAppID,
		passwordLength: cfg.PasswordLength,
		now:            cfg.Now,
	}
}

// CreateMeeting validates the input, checks the organizer's calendar for
// conflicts, provisions channel name and password, and persists the meeting
// together with its participant rows. The organizer is enrolled as an accepted
// participant with the organizer role; everyone else starts out invited.
// Conflict check and insert share one transaction so two concurrent creations
// cannot both pass the check.
func (l *Lifecycle) CreateMeeting(ctx context.Context, organizerID uuid.UUID, in CreateMeetingInput) (*models.Meeting, error) {
	now := l.now()
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateTimes(in.StartTime, in.EndTime, now); err != nil {
		return nil, err
	}

	meetingType := in.MeetingType
	if meetingType == "" {
		meetingType = models.MeetingTypeOther
	}
	if !meetingType.Valid() {
		return nil, Validationf("invalid meeting type %q", meetingType)
	}

	recurrence := models.RecurrenceNone
	var recurrenceEnd *time.Time
	if in.IsRecurring {
		recurrence = in.RecurrenceType
		if recurrence == "" || recurrence == models.RecurrenceNone {
			return nil, Validationf("recurring meetings need a recurrence type")
		}
		if !recurrence.Valid() {
			return nil, Validationf("invalid recurrence type %q", recurrence)
		}
		if in.RecurrenceEndDate != nil {
			if !in.RecurrenceEndDate.After(in.StartTime) {
				return nil, Validationf("recurrence end date must be after the start time")
			}
			recurrenceEnd = in.RecurrenceEndDate
		}
	}

	if in.MaxParticipants != nil && *in.MaxParticipants < 2 {
		return nil, Validationf("max participants must be at least 2")
	}

	channel := strings.TrimSpace(in.ChannelName)
	if channel != "" {
		if err := validateChannelName(channel); err != nil {
			return nil, err
		}
	} else {
		channel = l.gen.ChannelName(in.Title)
	}

	var password *string
	switch {
	case in.Password != "":
		if errs := l.gen.ValidatePassword(in.Password); len(errs) > 0 {
			return nil, Validationf("invalid meeting password: %s", strings.Join(errs, "; "))
		}
		pw := in.Password
		password = &pw
	case in.GeneratePassword:
		pw := l.gen.Password(l.passwordLength)
		password = &pw
	}

	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	m := &models.Meeting{
		Title:               strings.TrimSpace(in.Title),
		Description:         in.Description,
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		Timezone:            timezone,
		Location:            in.Location,
		ExternalMeetingLink: in.ExternalMeetingLink,
		MeetingType:         meetingType,
		Status:              models.MeetingStatusScheduled,
		MaxParticipants:     in.MaxParticipants,
		IsRecurring:         in.IsRecurring,
		RecurrenceType:      recurrence,
		RecurrenceEndDate:   recurrenceEnd,
		OrganizerID:         organizerID,
		ChannelName:         channel,
		ProviderAppID:       l.providerAppID,
		Password:            password,
		IsPasswordProtected: password != nil,
		AllowGuestAccess:    in.AllowGuestAccess,
	}

	var invited []models.Participant
	err := l.store.InTx(ctx, func(tx Store) error {
		conflicts, err := NewConflictDetector(tx).FindConflicts(ctx, organizerID, m.StartTime, m.EndTime, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return Conflictf("time range conflicts with existing meetings: %s", meetingTitles(conflicts))
		}
		if err := tx.CreateMeeting(ctx, m); err != nil {
			return err
		}

		organizerRef := organizerID
		organizer := &models.Participant{
			MeetingID: m.ID,
			UserID:    &organizerRef,
			Status:    models.ParticipantStatusAccepted,
			Role:      models.ParticipantRoleOrganizer,
		}
		if err := tx.CreateParticipant(ctx, organizer); err != nil {
			return err
		}

		invited, err = l.addParticipantsTx(ctx, tx, m, in.Participants)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.events.MeetingCreated(ctx, m)
	for i := range invited {
		l.events.ParticipantInvited(ctx, m, &invited[i])
	}
	return m, nil
}

// GetMeeting returns a meeting the actor organizes or participates in.
func (l *Lifecycle) GetMeeting(ctx context.Context, meetingID, actorID uuid.UUID) (*models.Meeting, error) {
	m, err := l.store.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NotFoundf("meeting not found")
	}
	if m.OrganizerID != actorID {
		p, err := l.store.FindParticipantByUser(ctx, meetingID, actorID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, Permissionf("you do not have access to this meeting")
		}
	}
	return m, nil
}

// ListMeetings returns the actor's meetings matching the filter.
func (l *Lifecycle) ListMeetings(ctx context.Context, f MeetingFilter) ([]models.Meeting, error) {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, Validationf("from must be before to")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validationf("invalid meeting status %q", f.Status)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, Validationf("invalid meeting type %q", f.Type)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return l.store.ListMeetings(ctx, f)
}

// UpdateMeeting applies a partial update. Only the organizer may call it, only
// while the meeting is still modifiable, and a changed time range is
// re-validated and re-checked for conflicts against everything but the meeting
// itself.
func (l *Lifecycle) UpdateMeeting(ctx context.Context, meetingID, actorID uuid.UUID, in UpdateMeetingInput) (*models.Meeting, error) {
	var updated *models.Meeting
	err := l.store.InTx(ctx, func(tx Store) error {
		m, err := tx.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundf("meeting not found")
		}
		if m.OrganizerID != actorID {
			return Permissionf("only the organizer can modify this meeting")
		}
		now := l.now()
		if !m.IsModifiable(now) {
			return Statef("meeting can no longer be modified")
		}

		if in.Title != nil {
			if err := validateTitle(*in.Title); err != nil {
				return err
			}
			m.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			m.Description = *in.Description
		}
		if in.Timezone != nil {
			tz := strings.TrimSpace(*in.Timezone)
			if tz == "" {
				tz = "UTC"
			}
			m.Timezone = tz
		}
		if in.Location != nil {
			m.Location = *in.Location
		}
		if in.ExternalMeetingLink != nil {
			m.ExternalMeetingLink = *in.ExternalMeetingLink
		}
		if in.MeetingType != nil {
			if !in.MeetingType.Valid() {
				return Validationf("invalid meeting type %q", *in.MeetingType)
			}
			m.MeetingType = *in.MeetingType
		}
		if in.MaxParticipants != nil {
			if *in.MaxParticipants < 2 {
				return Validationf("max participants must be at least 2")
			}
			m.MaxParticipants = in.MaxParticipants
		}
		if in.AllowGuestAccess != nil {
			m.AllowGuestAccess = *in.AllowGuestAccess
		}

		if in.StartTime != nil || in.EndTime != nil {
			if in.StartTime != nil {
				m.StartTime = *in.StartTime
			}
			if in.EndTime != nil {
				m.EndTime = *in.EndTime
			}
			if err := validateTimes(m.StartTime, m.EndTime, now); err != nil {
				return err
			}
			conflicts, err := NewConflictDetector(tx).FindConflicts(ctx, m.OrganizerID, m.StartTime, m.EndTime, &m.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return Conflictf("time range conflicts with existing meetings: %s", meetingTitles(conflicts))
			}
		}

		if err := tx.SaveMeeting(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.events.MeetingUpdated(ctx, updated)
	return updated, nil
}

// CancelMeeting marks a meeting cancelled. Cancellation is terminal: cancelling
// twice is an error, and nothing un-cancels a meeting.
func (l *Lifecycle) CancelMeeting(ctx context.Context, meetingID, actorID uuid.UUID) (*models.Meeting, error) {
	var cancelled *models.Meeting
	err := l.store.InTx(ctx, func(tx Store) error {
		m, err := tx.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundf("meeting not found")
		}
		if m.OrganizerID != actorID {
			return Permissionf("only the organizer can cancel this meeting")
		}
		if m.Status == models.MeetingStatusCancelled {
			return Statef("meeting is already cancelled")
		}
		m.Status = models.MeetingStatusCancelled
		if err := tx.SaveMeeting(ctx, m); err != nil {
			return err
		}
		cancelled = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.events.MeetingCancelled(ctx, cancelled)
	return cancelled, nil
}

// UpdateMeetingPassword sets, regenerates or removes the join password.
// Exactly one action must be selected. The returned meeting carries the new
// password so the organizer can share it.
func (l *Lifecycle) UpdateMeetingPassword(ctx context.Context, meetingID, actorID uuid.UUID, in UpdatePasswordInput) (*models.Meeting, error) {
	actions := 0
	if in.Password != "" {
		actions++
	}
	if in.GeneratePassword {
		actions++
	}
	if in.RemovePassword {
		actions++
	}
	if actions != 1 {
		return nil, Validationf("provide exactly one of password, generate_password or remove_password")
	}

	var updated *models.Meeting
	err := l.store.InTx(ctx, func(tx Store) error {
		m, err := tx.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundf("meeting not found")
		}
		if m.OrganizerID != actorID {
			return Permissionf("only the organizer can change the meeting password")
		}
		if m.Status == models.MeetingStatusCancelled {
			return Statef("meeting is cancelled")
		}

		switch {
		case in.RemovePassword:
			m.Password = nil
			m.IsPasswordProtected = false
		case in.Password != "":
			if errs := l.gen.ValidatePassword(in.Password); len(errs) > 0 {
				return Validationf("invalid meeting password: %s", strings.Join(errs, "; "))
			}
			pw := in.Password
			m.Password = &pw
			m.IsPasswordProtected = true
		case in.GeneratePassword:
			pw := l.gen.Password(l.passwordLength)
			m.Password = &pw
			m.IsPasswordProtected = true
		}

		if err := tx.SaveMeeting(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.events.MeetingUpdated(ctx, updated)
	return updated, nil
}

// AddParticipants invites people to a meeting. Only the organizer may call it.
// Invitees already on the meeting are skipped silently; the returned slice
// holds only the rows actually created.
func (l *Lifecycle) AddParticipants(ctx context.Context, meetingID, actorID uuid.UUID, inputs []ParticipantInput) ([]models.Participant, error) {
	if len(inputs) == 0 {
		return nil, Validationf("no participants given")
	}
	var m *models.Meeting
	var added []models.Participant
	err := l.store.InTx(ctx, func(tx Store) error {
		var err error
		m, err = tx.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundf("meeting not found")
		}
		if m.OrganizerID != actorID {
			return Permissionf("only the organizer can invite participants")
		}
		if m.Status == models.MeetingStatusCancelled {
			return Statef("meeting is cancelled")
		}
		added, err = l.addParticipantsTx(ctx, tx, m, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range added {
		l.events.ParticipantInvited(ctx, m, &added[i])
	}
	return added, nil
}

// RespondToInvite records the named participant's answer. Only accepted,
// declined and tentative are valid answers.
func (l *Lifecycle) RespondToInvite(ctx context.Context, meetingID, userID uuid.UUID, status models.ParticipantStatus, notes *string) (*models.Participant, error) {
	switch status {
	case models.ParticipantStatusAccepted, models.ParticipantStatusDeclined, models.ParticipantStatusTentative:
	default:
		return nil, Validationf("response status must be accepted, declined or tentative")
	}

	var m *models.Meeting
	var p *models.Participant
	err := l.store.InTx(ctx, func(tx Store) error {
		var err error
		m, err = tx.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundf("meeting not found")
		}
		p, err = tx.FindParticipantByUser(ctx, meetingID, userID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundf("you are not invited to this meeting")
		}
		p.Status = status
		if notes != nil {
			p.Notes = *notes
		}
		respondedAt := l.now()
		p.ResponseDate = &respondedAt
		return tx.SaveParticipant(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	l.events.ParticipantResponded(ctx, m, p)
	return p, nil
}

// ListParticipants returns a meeting's participant rows. The actor must
// organize or participate in the meeting.
func (l *Lifecycle) ListParticipants(ctx context.Context, meetingID, actorID uuid.UUID) ([]models.Participant, error) {
	if _, err := l.GetMeeting(ctx, meetingID, actorID); err != nil {
		return nil, err
	}
	return l.store.ListParticipants(ctx, meetingID)
}

func (l *Lifecycle) addParticipantsTx(ctx context.Context, tx Store, m *models.Meeting, inputs []ParticipantInput) ([]models.Participant, error) {
	seats := 0
	if m.MaxParticipants != nil {
		current, err := tx.ListParticipants(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		seats = *m.MaxParticipants - len(current)
	}
	var added []models.Participant
	for _, in := range inputs {
		p, err := l.enrollTx(ctx, tx, m, in)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		added = append(added, *p)
		if m.MaxParticipants != nil && len(added) > seats {
			return nil, Validationf("meeting is limited to %d participants", *m.MaxParticipants)
		}
	}
	return added, nil
}

// enrollTx creates one participant row, or returns (nil, nil) when the invitee
// is already on the meeting.
func (l *Lifecycle) enrollTx(ctx context.Context, tx Store, m *models.Meeting, in ParticipantInput) (*models.Participant, error) {
	role := in.role
	if role == "" {
		role = models.ParticipantRoleAttendee
	}
	if !role.Valid() {
		return nil, Validationf("invalid participant role %q", role)
	}
	if role == models.ParticipantRoleOrganizer {
		return nil, Validationf("the organizer role cannot be assigned to invitees")
	}

	if in.userID != nil {
		existing, err := tx.FindParticipantByUser(ctx, m.ID, *in.userID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, nil
		}
		u, err := tx.FindUserByID(ctx, *in.userID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, NotFoundf("user %s not found", *in.userID)
		}
		userRef := *in.userID
		p := &models.Participant{
			MeetingID: m.ID,
			UserID:    &userRef,
			Email:     u.Email,
			Name:      displayName(u),
			Status:    models.ParticipantStatusInvited,
			Role:      role,
		}
		if err := tx.CreateParticipant(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	email := strings.TrimSpace(in.email)
	if email == "" {
		return nil, Validationf("guest participants need an email address")
	}
	existing, err := tx.FindParticipantByEmail(ctx, m.ID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}
	p := &models.Participant{
		MeetingID: m.ID,
		Email:     email,
		Name:      strings.TrimSpace(in.name),
		Status:    models.ParticipantStatusInvited,
		Role:      role,
	}
	if err := tx.CreateParticipant(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validateTitle(title string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return Validationf("title is required")
	}
	if len(t) > 200 {
		return Validationf("title must be at most 200 characters")
	}
	return nil
}

// validateChannelName checks a caller-supplied channel name. Channel names end
// up in join URLs, so the charset is restricted to URL-safe characters.
func validateChannelName(channel string) error {
	if len(channel) > MaxChannelNameLength {
		return Validationf("channel name must be at most %d characters", MaxChannelNameLength)
	}
	for _, r := range channel {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return Validationf("channel name may only contain letters, digits, dashes and underscores")
		}
	}
	return nil
}

func validateTimes(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return Validationf("start and end times are required")
	}
	if !end.After(start) {
		return Validationf("end time must be after start time")
	}
	if start.Before(now) {
		return Validationf("start time must be in the future")
	}
	if end.Sub(start) > MaxMeetingDuration {
		return Validationf("meeting duration cannot exceed %d hours", int(MaxMeetingDuration.Hours()))
	}
	return nil
}

func meetingTitles(meetings []models.Meeting) string {
	titles := make([]string, len(meetings))
	for i, m := range meetings {
		titles[i] = fmt.Sprintf("%q", m.Title)
	}
	return strings.Join(titles, ", ")
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
