package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

const (
	// slotStep is the fixed offset between candidate windows. Windows overlap
	// on purpose: every valid start offset is surfaced, not just disjoint
	// partitions of the day.
	slotStep = 30 * time.Minute

	MinSlotMinutes = 15
	MaxSlotMinutes = 480
)

// WorkingHours bounds a day scan. Hours are day-local whole hours in [0, 24].
type WorkingHours struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func (w WorkingHours) validate() error {
	if w.StartHour < 0 || w.EndHour > 24 {
		return Validationf("working hours must lie within 0..24")
	}
	if w.StartHour >= w.EndHour {
		return Validationf("working hours start must be before end")
	}
	return nil
}

// TimeSlot is one candidate window. Conflicts lists the meetings that block
// it; Available is true exactly when Conflicts is empty.
type TimeSlot struct {
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Available bool             `json:"available"`
	Conflicts []models.Meeting `json:"conflicts,omitempty"`
}

// AvailabilityEngine partitions a day into candidate meeting windows and marks
// each free or conflicting for one actor.
type AvailabilityEngine struct {
	meetings MeetingStore
}

func NewAvailabilityEngine(meetings MeetingStore) *AvailabilityEngine {
	return &AvailabilityEngine{meetings: meetings}
}

// AvailableSlots slides a window of durationMinutes through the working hours
// of day in 30 minute steps, in day's location. The actor's meetings for the
// whole span are fetched once and every window is checked against that set.
// A duration that does not fit the span yields an empty sequence.
func (e *AvailabilityEngine) AvailableSlots(ctx context.Context, actorID uuid.UUID, day time.Time, durationMinutes int, hours WorkingHours) ([]TimeSlot, error) {
	if durationMinutes < MinSlotMinutes || durationMinutes > MaxSlotMinutes {
		return nil, Validationf("slot duration must be between %d and %d minutes", MinSlotMinutes, MaxSlotMinutes)
	}
	if err := hours.validate(); err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), hours.StartHour, 0, 0, 0, day.Location())
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), hours.EndHour, 0, 0, 0, day.Location())

	booked, err := e.meetings.FindMeetingsInRange(ctx, actorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0)
	for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(slotStep) {
		end := start.Add(duration)
		conflicts := Overlapping(booked, start, end, nil)
		slots = append(slots, TimeSlot{
			Start:     start,
			End:       end,
			Available: len(conflicts) == 0,
			Conflicts: conflicts,
		})
	}
	return slots, nil
}
