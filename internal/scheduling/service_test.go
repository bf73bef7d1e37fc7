package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

// testNow is the frozen clock for lifecycle tests; meetings are scheduled the
// day after.
var testNow = time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
}

func newTestLifecycle(store *memoryStore) (*Lifecycle, *recordingEvents) {
	events := &recordingEvents{}
	l := NewLifecycle(store, stubGenerator{}, events, LifecycleConfig{
		ProviderAppID: "app-123",
		Now:           func() time.Time { return testNow },
	})
	return l, events
}

func validCreateInput() CreateMeetingInput {
	return CreateMeetingInput{
		Title:     "Team Sync",
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *CreateMeetingInput)
	}{
		{"end before start", func(in *CreateMeetingInput) {
			in.StartTime = at(10, 0)
			in.EndTime = at(9, 0)
		}},
		{"end equals start", func(in *CreateMeetingInput) {
			in.EndTime = in.StartTime
		}},
		{"start in the past", func(in *CreateMeetingInput) {
			in.StartTime = testNow.Add(-time.Hour)
			in.EndTime = testNow.Add(time.Hour)
		}},
		{"duration above eight hours", func(in *CreateMeetingInput) {
			in.StartTime = at(8, 0)
			in.EndTime = at(16, 30)
		}},
		{"missing title", func(in *CreateMeetingInput) {
			in.Title = "   "
		}},
		{"unknown meeting type", func(in *CreateMeetingInput) {
			in.MeetingType = "standup"
		}},
		{"recurring without recurrence type", func(in *CreateMeetingInput) {
			in.IsRecurring = true
		}},
		{"recurrence end before start", func(in *CreateMeetingInput) {
			in.IsRecurring = true
			in.RecurrenceType = models.RecurrenceWeekly
			in.RecurrenceEndDate = ptr(at(9, 0))
		}},
		{"custom password too short", func(in *CreateMeetingInput) {
			in.Password = "ab"
		}},
		{"max participants below two", func(in *CreateMeetingInput) {
			in.MaxParticipants = ptr(1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			organizer := store.addUser("org", "org@example.com")
			l, _ := newTestLifecycle(store)

			in := validCreateInput()
			tt.mutate(&in)
			_, err := l.CreateMeeting(ctx, organizer, in)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation), "want validation error, got %v", err)
			assert.Empty(t, store.meetings, "nothing may persist on rejected input")
		})
	}

	t.Run("custom channel name too long", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		in := validCreateInput()
		for len(in.ChannelName) <= MaxChannelNameLength {
			in.ChannelName += "x"
		}
		_, err := l.CreateMeeting(ctx, organizer, in)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("custom channel name with unsafe characters", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		for _, channel := range []string{"team sync", "team/sync", "sync?"} {
			in := validCreateInput()
			in.ChannelName = channel
			_, err := l.CreateMeeting(ctx, organizer, in)
			require.Error(t, err, "channel %q must be rejected", channel)
			assert.True(t, IsKind(err, KindValidation))
		}
	})
}

func TestCreateMeetingDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	l, events := newTestLifecycle(store)

	m, err := l.CreateMeeting(ctx, organizer, validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, models.MeetingStatusScheduled, m.Status)
	assert.Equal(t, models.MeetingTypeOther, m.MeetingType)
	assert.Equal(t, "UTC", m.Timezone)
	assert.Equal(t, "chan-team-sync", m.ChannelName)
	assert.Equal(t, "app-123", m.ProviderAppID)
	assert.False(t, m.IsPasswordProtected)
	assert.Nil(t, m.Password)
	assert.Equal(t, 1, events.created)

	parts, err := store.ListParticipants(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].UserID)
	assert.Equal(t, organizer, *parts[0].UserID)
	assert.Equal(t, models.ParticipantStatusAccepted, parts[0].Status)
	assert.Equal(t, models.ParticipantRoleOrganizer, parts[0].Role)
}

func TestCreateMeetingPasswordProvisioning(t *testing.T) {
	ctx := context.Background()

	t.Run("generated on request", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		in := validCreateInput()
		in.GeneratePassword = true
		m, err := l.CreateMeeting(ctx, organizer, in)
		require.NoError(t, err)
		assert.True(t, m.IsPasswordProtected)
		require.NotNil(t, m.Password)
		assert.Len(t, *m.Password, DefaultPasswordLength)
		assert.Empty(t, stubGenerator{}.ValidatePassword(*m.Password))
	})

	t.Run("custom password wins over generation", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		in := validCreateInput()
		in.Password = "Secret1"
		in.GeneratePassword = true
		in.ChannelName = "my-own-channel"
		m, err := l.CreateMeeting(ctx, organizer, in)
		require.NoError(t, err)
		assert.True(t, m.IsPasswordProtected)
		require.NotNil(t, m.Password)
		assert.Equal(t, "Secret1", *m.Password)
		assert.Equal(t, "my-own-channel", m.ChannelName)
	})
}

func TestCreateMeetingConflict(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	l, _ := newTestLifecycle(store)

	first := validCreateInput()
	first.Title = "Existing standup"
	_, err := l.CreateMeeting(ctx, organizer, first)
	require.NoError(t, err)

	overlapping := validCreateInput()
	overlapping.StartTime = at(10, 30)
	overlapping.EndTime = at(11, 30)
	_, err = l.CreateMeeting(ctx, organizer, overlapping)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConflict))
	assert.Contains(t, err.Error(), "Existing standup")
	assert.Len(t, store.meetings, 1, "conflicting create must not persist")

	backToBack := validCreateInput()
	backToBack.StartTime = at(11, 0)
	backToBack.EndTime = at(12, 0)
	_, err = l.CreateMeeting(ctx, organizer, backToBack)
	require.NoError(t, err, "adjacent meetings do not overlap")

	otherUser := store.addUser("ben", "ben@example.com")
	sameSlot := validCreateInput()
	sameSlot.Title = "Ben's sync"
	_, err = l.CreateMeeting(ctx, otherUser, sameSlot)
	require.NoError(t, err, "another actor's calendar is independent")
}

func TestCreateMeetingEnrollsInitialParticipants(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	colleague := store.addUser("carol", "carol@example.com")
	l, events := newTestLifecycle(store)

	in := validCreateInput()
	in.Participants = []ParticipantInput{
		RegisteredParticipant(colleague),
		GuestParticipant("guest@example.com", "Guest One").WithRole(models.ParticipantRolePresenter),
		GuestParticipant("Guest@Example.com", "Duplicate"),
	}
	m, err := l.CreateMeeting(ctx, organizer, in)
	require.NoError(t, err)

	parts, err := store.ListParticipants(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, parts, 3, "organizer, colleague and one guest")
	assert.Equal(t, 2, events.invited)

	var guest *models.Participant
	for i := range parts {
		if parts[i].UserID == nil {
			guest = &parts[i]
		}
	}
	require.NotNil(t, guest)
	assert.Equal(t, "guest@example.com", guest.Email)
	assert.Equal(t, models.ParticipantStatusInvited, guest.Status)
	assert.Equal(t, models.ParticipantRolePresenter, guest.Role)
	assert.True(t, guest.IsGuest())
}

func TestCreateMeetingUnknownInviteeRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	l, events := newTestLifecycle(store)

	in := validCreateInput()
	in.Participants = []ParticipantInput{RegisteredParticipant(uuid.New())}
	_, err := l.CreateMeeting(ctx, organizer, in)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Empty(t, store.meetings)
	assert.Empty(t, store.participants)
	assert.Zero(t, events.created)
}

func TestUpdateMeeting(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memoryStore, *Lifecycle, *recordingEvents, *models.Meeting, uuid.UUID) {
		t.Helper()
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, events := newTestLifecycle(store)
		m, err := l.CreateMeeting(ctx, organizer, validCreateInput())
		require.NoError(t, err)
		return store, l, events, m, organizer
	}

	t.Run("unknown meeting", func(t *testing.T) {
		_, l, _, _, organizer := setup(t)
		_, err := l.UpdateMeeting(ctx, uuid.New(), organizer, UpdateMeetingInput{Title: ptr("New")})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("non-organizer rejected", func(t *testing.T) {
		store, l, _, m, _ := setup(t)
		stranger := store.addUser("eve", "eve@example.com")
		_, err := l.UpdateMeeting(ctx, m.ID, stranger, UpdateMeetingInput{Title: ptr("Hijack")})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindPermission))
	})

	t.Run("cancelled meeting is not modifiable", func(t *testing.T) {
		_, l, _, m, organizer := setup(t)
		_, err := l.CancelMeeting(ctx, m.ID, organizer)
		require.NoError(t, err)
		_, err = l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{Title: ptr("New")})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindState))
	})

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		_, l, events, m, organizer := setup(t)
		got, err := l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{
			Title:    ptr("Renamed"),
			Location: ptr("Room 4"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "Room 4", got.Location)
		assert.Equal(t, m.StartTime, got.StartTime)
		assert.Equal(t, m.EndTime, got.EndTime)
		assert.Equal(t, 1, events.updated)
	})

	t.Run("moving within own slot excludes itself from conflicts", func(t *testing.T) {
		_, l, _, m, organizer := setup(t)
		got, err := l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{
			StartTime: ptr(at(10, 30)),
			EndTime:   ptr(at(11, 30)),
		})
		require.NoError(t, err)
		assert.Equal(t, at(10, 30), got.StartTime)
	})

	t.Run("moving onto another meeting conflicts", func(t *testing.T) {
		_, l, _, m, organizer := setup(t)
		other := validCreateInput()
		other.Title = "Blocker"
		other.StartTime = at(13, 0)
		other.EndTime = at(14, 0)
		_, err := l.CreateMeeting(ctx, organizer, other)
		require.NoError(t, err)

		_, err = l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{
			StartTime: ptr(at(13, 30)),
			EndTime:   ptr(at(14, 30)),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindConflict))
		assert.Contains(t, err.Error(), "Blocker")
	})

	t.Run("new times are re-validated", func(t *testing.T) {
		_, l, _, m, organizer := setup(t)
		_, err := l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{
			EndTime: ptr(at(9, 0)),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("started meeting can no longer be modified", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)
		m := &models.Meeting{
			Title:       "Running",
			StartTime:   testNow.Add(-time.Hour),
			EndTime:     testNow.Add(time.Hour),
			Status:      models.MeetingStatusScheduled,
			OrganizerID: organizer,
		}
		require.NoError(t, store.CreateMeeting(ctx, m))
		_, err := l.UpdateMeeting(ctx, m.ID, organizer, UpdateMeetingInput{Title: ptr("Late edit")})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindState))
	})
}

func TestCancelMeeting(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	stranger := store.addUser("eve", "eve@example.com")
	l, events := newTestLifecycle(store)

	m, err := l.CreateMeeting(ctx, organizer, validCreateInput())
	require.NoError(t, err)

	_, err = l.CancelMeeting(ctx, m.ID, stranger)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindPermission))

	got, err := l.CancelMeeting(ctx, m.ID, organizer)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCancelled, got.Status)
	assert.Equal(t, 1, events.cancelled)

	_, err = l.CancelMeeting(ctx, m.ID, organizer)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState), "double cancel is an error, not a no-op")

	stored, err := store.FindMeetingByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCancelled, stored.Status)
}

func TestUpdateMeetingPassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Lifecycle, *models.Meeting, uuid.UUID, *memoryStore) {
		t.Helper()
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)
		m, err := l.CreateMeeting(ctx, organizer, validCreateInput())
		require.NoError(t, err)
		return l, m, organizer, store
	}

	t.Run("exactly one action required", func(t *testing.T) {
		l, m, organizer, _ := setup(t)
		_, err := l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))

		_, err = l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{
			Password:       "Secret1",
			RemovePassword: true,
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("set generate remove round trip", func(t *testing.T) {
		l, m, organizer, _ := setup(t)

		got, err := l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{Password: "Secret1"})
		require.NoError(t, err)
		assert.True(t, got.IsPasswordProtected)
		require.NotNil(t, got.Password)
		assert.Equal(t, "Secret1", *got.Password)

		got, err = l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{GeneratePassword: true})
		require.NoError(t, err)
		assert.True(t, got.IsPasswordProtected)
		require.NotNil(t, got.Password)
		assert.Len(t, *got.Password, DefaultPasswordLength)

		got, err = l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{RemovePassword: true})
		require.NoError(t, err)
		assert.False(t, got.IsPasswordProtected)
		assert.Nil(t, got.Password)
	})

	t.Run("weak custom password rejected", func(t *testing.T) {
		l, m, organizer, _ := setup(t)
		_, err := l.UpdateMeetingPassword(ctx, m.ID, organizer, UpdatePasswordInput{Password: "ab"})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("non-organizer rejected", func(t *testing.T) {
		l, m, _, store := setup(t)
		stranger := store.addUser("eve", "eve@example.com")
		_, err := l.UpdateMeetingPassword(ctx, m.ID, stranger, UpdatePasswordInput{RemovePassword: true})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindPermission))
	})
}

func TestAddParticipants(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Lifecycle, *recordingEvents, *models.Meeting, uuid.UUID, *memoryStore) {
		t.Helper()
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, events := newTestLifecycle(store)
		m, err := l.CreateMeeting(ctx, organizer, validCreateInput())
		require.NoError(t, err)
		return l, events, m, organizer, store
	}

	t.Run("guest participant", func(t *testing.T) {
		l, events, m, organizer, store := setup(t)
		added, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Nil(t, added[0].UserID)
		assert.Equal(t, "pat@example.com", added[0].Email)
		assert.Equal(t, models.ParticipantStatusInvited, added[0].Status)
		assert.Equal(t, models.ParticipantRoleAttendee, added[0].Role)
		assert.Equal(t, 1, events.invited)
		assert.Equal(t, 2, store.participantCount(m.ID))
	})

	t.Run("re-adding the same email is a silent no-op", func(t *testing.T) {
		l, events, m, organizer, store := setup(t)
		_, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
		})
		require.NoError(t, err)

		added, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("Pat@Example.com", "Pat Again"),
		})
		require.NoError(t, err)
		assert.Empty(t, added)
		assert.Equal(t, 2, store.participantCount(m.ID), "participant count unchanged")
		assert.Equal(t, 1, events.invited)
	})

	t.Run("re-adding a registered user is a silent no-op", func(t *testing.T) {
		l, _, m, organizer, store := setup(t)
		colleague := store.addUser("carol", "carol@example.com")
		_, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			RegisteredParticipant(colleague),
		})
		require.NoError(t, err)

		added, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			RegisteredParticipant(colleague),
		})
		require.NoError(t, err)
		assert.Empty(t, added)
		assert.Equal(t, 2, store.participantCount(m.ID))
	})

	t.Run("registered participant fills directory details", func(t *testing.T) {
		l, _, m, organizer, store := setup(t)
		colleague := store.addUser("carol", "carol@example.com")
		added, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			RegisteredParticipant(colleague),
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Equal(t, "carol@example.com", added[0].Email)
		assert.Equal(t, "carol", added[0].Name)
	})

	t.Run("organizer role cannot be handed out", func(t *testing.T) {
		l, _, m, organizer, _ := setup(t)
		_, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat").WithRole(models.ParticipantRoleOrganizer),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("guest without email rejected", func(t *testing.T) {
		l, _, m, organizer, _ := setup(t)
		_, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("", "No Mail"),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("non-organizer rejected", func(t *testing.T) {
		l, _, m, _, store := setup(t)
		stranger := store.addUser("eve", "eve@example.com")
		_, err := l.AddParticipants(ctx, m.ID, stranger, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindPermission))
	})

	t.Run("cancelled meeting rejects invitations", func(t *testing.T) {
		l, _, m, organizer, _ := setup(t)
		_, err := l.CancelMeeting(ctx, m.ID, organizer)
		require.NoError(t, err)
		_, err = l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindState))
	})

	t.Run("empty input rejected", func(t *testing.T) {
		l, _, m, organizer, _ := setup(t)
		_, err := l.AddParticipants(ctx, m.ID, organizer, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("max participants caps the roster", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		in := validCreateInput()
		in.MaxParticipants = ptr(2)
		m, err := l.CreateMeeting(ctx, organizer, in)
		require.NoError(t, err)

		added, err := l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
		})
		require.NoError(t, err)
		require.Len(t, added, 1, "organizer plus one fills a cap of two")

		_, err = l.AddParticipants(ctx, m.ID, organizer, []ParticipantInput{
			GuestParticipant("sam@example.com", "Sam"),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
		assert.Equal(t, 2, store.participantCount(m.ID), "overflowing invite must not persist")
	})

	t.Run("initial invitees count against max participants", func(t *testing.T) {
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		l, _ := newTestLifecycle(store)

		in := validCreateInput()
		in.MaxParticipants = ptr(2)
		in.Participants = []ParticipantInput{
			GuestParticipant("pat@example.com", "Pat"),
			GuestParticipant("sam@example.com", "Sam"),
		}
		_, err := l.CreateMeeting(ctx, organizer, in)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
		assert.Empty(t, store.meetings, "rejected creation must roll back")
	})
}

func TestRespondToInvite(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Lifecycle, *recordingEvents, *models.Meeting, uuid.UUID, *memoryStore) {
		t.Helper()
		store := newMemoryStore()
		organizer := store.addUser("org", "org@example.com")
		invitee := store.addUser("carol", "carol@example.com")
		l, events := newTestLifecycle(store)
		in := validCreateInput()
		in.Participants = []ParticipantInput{RegisteredParticipant(invitee)}
		m, err := l.CreateMeeting(ctx, organizer, in)
		require.NoError(t, err)
		return l, events, m, invitee, store
	}

	t.Run("accept records response date and notes", func(t *testing.T) {
		l, events, m, invitee, _ := setup(t)
		p, err := l.RespondToInvite(ctx, m.ID, invitee, models.ParticipantStatusAccepted, ptr("see you there"))
		require.NoError(t, err)
		assert.Equal(t, models.ParticipantStatusAccepted, p.Status)
		assert.Equal(t, "see you there", p.Notes)
		require.NotNil(t, p.ResponseDate)
		assert.Equal(t, testNow, *p.ResponseDate)
		assert.Equal(t, 1, events.responded)
	})

	t.Run("decline without notes keeps old notes", func(t *testing.T) {
		l, _, m, invitee, _ := setup(t)
		_, err := l.RespondToInvite(ctx, m.ID, invitee, models.ParticipantStatusAccepted, ptr("first answer"))
		require.NoError(t, err)
		p, err := l.RespondToInvite(ctx, m.ID, invitee, models.ParticipantStatusDeclined, nil)
		require.NoError(t, err)
		assert.Equal(t, models.ParticipantStatusDeclined, p.Status)
		assert.Equal(t, "first answer", p.Notes)
	})

	t.Run("only accept decline tentative are answers", func(t *testing.T) {
		l, _, m, invitee, _ := setup(t)
		_, err := l.RespondToInvite(ctx, m.ID, invitee, models.ParticipantStatusInvited, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("non-participant cannot respond", func(t *testing.T) {
		l, _, m, _, store := setup(t)
		stranger := store.addUser("eve", "eve@example.com")
		_, err := l.RespondToInvite(ctx, m.ID, stranger, models.ParticipantStatusAccepted, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("unknown meeting", func(t *testing.T) {
		l, _, _, invitee, _ := setup(t)
		_, err := l.RespondToInvite(ctx, uuid.New(), invitee, models.ParticipantStatusAccepted, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNotFound))
	})
}

func TestGetMeetingVisibility(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	invitee := store.addUser("carol", "carol@example.com")
	stranger := store.addUser("eve", "eve@example.com")
	l, _ := newTestLifecycle(store)

	in := validCreateInput()
	in.Participants = []ParticipantInput{RegisteredParticipant(invitee)}
	m, err := l.CreateMeeting(ctx, organizer, in)
	require.NoError(t, err)

	_, err = l.GetMeeting(ctx, m.ID, organizer)
	require.NoError(t, err)

	_, err = l.GetMeeting(ctx, m.ID, invitee)
	require.NoError(t, err)

	_, err = l.GetMeeting(ctx, m.ID, stranger)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindPermission))

	_, err = l.GetMeeting(ctx, uuid.New(), organizer)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))

	parts, err := l.ListParticipants(ctx, m.ID, organizer)
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	_, err = l.ListParticipants(ctx, m.ID, stranger)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindPermission))
}

func TestListMeetings(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	organizer := store.addUser("org", "org@example.com")
	other := store.addUser("ben", "ben@example.com")
	l, _ := newTestLifecycle(store)

	morning := validCreateInput()
	morning.Title = "Morning"
	morning.StartTime = at(9, 0)
	morning.EndTime = at(10, 0)
	_, err := l.CreateMeeting(ctx, organizer, morning)
	require.NoError(t, err)

	afternoon := validCreateInput()
	afternoon.Title = "Afternoon"
	afternoon.StartTime = at(15, 0)
	afternoon.EndTime = at(16, 0)
	created, err := l.CreateMeeting(ctx, organizer, afternoon)
	require.NoError(t, err)

	foreign := validCreateInput()
	foreign.Title = "Not mine"
	foreign.StartTime = at(11, 0)
	foreign.EndTime = at(12, 0)
	_, err = l.CreateMeeting(ctx, other, foreign)
	require.NoError(t, err)

	t.Run("actor sees only their meetings ordered by start", func(t *testing.T) {
		got, err := l.ListMeetings(ctx, MeetingFilter{ActorID: organizer})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Morning", got[0].Title)
		assert.Equal(t, "Afternoon", got[1].Title)
	})

	t.Run("time window filter", func(t *testing.T) {
		got, err := l.ListMeetings(ctx, MeetingFilter{
			ActorID: organizer,
			From:    ptr(at(14, 0)),
			To:      ptr(at(17, 0)),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Afternoon", got[0].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		_, err := l.CancelMeeting(ctx, created.ID, organizer)
		require.NoError(t, err)
		got, err := l.ListMeetings(ctx, MeetingFilter{
			ActorID: organizer,
			Status:  models.MeetingStatusCancelled,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Afternoon", got[0].Title)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		_, err := l.ListMeetings(ctx, MeetingFilter{
			ActorID: organizer,
			From:    ptr(at(17, 0)),
			To:      ptr(at(14, 0)),
		})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := l.ListMeetings(ctx, MeetingFilter{ActorID: organizer, Status: "archived"})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})
}
