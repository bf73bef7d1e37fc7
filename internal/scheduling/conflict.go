package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// ConflictDetector finds meetings of an actor that overlap a candidate time
// window. A meeting counts when the actor organizes it or has accepted an
// invitation to it; cancelled meetings never conflict.
type ConflictDetector struct {
	meetings MeetingStore
}

func NewConflictDetector(meetings MeetingStore) *ConflictDetector {
	return &ConflictDetector{meetings: meetings}
}

// FindConflicts returns the actor's meetings overlapping [start, end), ordered
// by start time. exclude skips one meeting id so an update can be checked
// against everything but itself.
func (d *ConflictDetector) FindConflicts(ctx context.Context, actorID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]models.Meeting, error) {
	if !start.Before(end) {
		return nil, Validationf("start time must be before end time")
	}
	meetings, err := d.meetings.FindMeetingsInRange(ctx, actorID, start, end)
	if err != nil {
		return nil, err
	}
	return Overlapping(meetings, start, end, exclude), nil
}

// Overlapping filters an already-fetched meeting set down to those overlapping
// [start, end) under half-open semantics, skipping cancelled meetings and the
// optional excluded id. The availability engine uses it to scan a whole day
// from a single fetch.
func Overlapping(meetings []models.Meeting, start, end time.Time, exclude *uuid.UUID) []models.Meeting {
	var out []models.Meeting
	for _, m := range meetings {
		if exclude != nil && m.ID == *exclude {
			continue
		}
		if m.Status == models.MeetingStatusCancelled {
			continue
		}
		if m.Overlaps(start, end) {
			out = append(out, m)
		}
	}
	return out
}
