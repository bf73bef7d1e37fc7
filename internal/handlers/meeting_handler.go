package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/NestyJo/video-chat-backend/internal/conference"
	"github.com/NestyJo/video-chat-backend/internal/dto"
	"github.com/NestyJo/video-chat-backend/internal/invites"
	"github.com/NestyJo/video-chat-backend/internal/middleware"
	"github.com/NestyJo/video-chat-backend/internal/models"
	"github.com/NestyJo/video-chat-backend/internal/scheduling"
)

type MeetingHandler struct {
	lifecycle    *scheduling.Lifecycle
	availability *scheduling.AvailabilityEngine
	gate         *scheduling.AccessGate
	links        *conference.LinkBuilder
	invites      *invites.Issuer // nil when Redis is not configured
}

func NewMeetingHandler(
	lifecycle *scheduling.Lifecycle,
	availability *scheduling.AvailabilityEngine,
	gate *scheduling.AccessGate,
	links *conference.LinkBuilder,
	issuer *invites.Issuer,
) *MeetingHandler {
	return &MeetingHandler{
		lifecycle:    lifecycle,
		availability: availability,
		gate:         gate,
		links:        links,
		invites:      issuer,
	}
}

func (h *MeetingHandler) Create(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	m, err := h.lifecycle.CreateMeeting(c.UserContext(), actorID, req.ToInput())
	if err != nil {
		return respondError(c, err)
	}

	// The organizer gets the join password back exactly once, here.
	return c.Status(fiber.StatusCreated).JSON(dto.NewMeetingResponse(m, time.Now(), true))
}

func (h *MeetingHandler) List(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset")
	if offset < 0 {
		offset = 0
	}

	filter := scheduling.MeetingFilter{
		ActorID: actorID,
		Status:  models.MeetingStatus(c.Query("status")),
		Type:    models.MeetingType(c.Query("type")),
		Limit:   limit,
		Offset:  offset,
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "from must be an RFC3339 timestamp")
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "to must be an RFC3339 timestamp")
		}
		filter.To = &to
	}
	// upcoming/past are shortcuts for an open-ended window anchored at now.
	now := time.Now()
	if c.QueryBool("upcoming") {
		filter.From = &now
	}
	if c.QueryBool("past") {
		filter.To = &now
	}

	meetings, err := h.lifecycle.ListMeetings(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MeetingListResponse{
		Meetings: dto.NewMeetingResponses(meetings, now),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

func (h *MeetingHandler) Availability(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	dateParam := c.Query("date")
	if dateParam == "" {
		return badRequest(c, "date query parameter is required (YYYY-MM-DD)")
	}
	day, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		return badRequest(c, "date must be formatted YYYY-MM-DD")
	}

	duration := c.QueryInt("duration", 30)
	hours := scheduling.WorkingHours{
		StartHour: c.QueryInt("start_hour", 9),
		EndHour:   c.QueryInt("end_hour", 17),
	}

	slots, err := h.availability.AvailableSlots(c.UserContext(), actorID, day, duration, hours)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.AvailabilityResponse{
		Date:            dateParam,
		DurationMinutes: duration,
		StartHour:       hours.StartHour,
		EndHour:         hours.EndHour,
		Slots:           dto.NewSlotResponses(slots),
	})
}

func (h *MeetingHandler) Get(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	m, err := h.lifecycle.GetMeeting(c.UserContext(), meetingID, actorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewMeetingResponse(m, time.Now(), m.OrganizerID == actorID))
}

func (h *MeetingHandler) Update(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	var req dto.UpdateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	m, err := h.lifecycle.UpdateMeeting(c.UserContext(), meetingID, actorID, req.ToInput())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewMeetingResponse(m, time.Now(), true))
}

func (h *MeetingHandler) Cancel(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	m, err := h.lifecycle.CancelMeeting(c.UserContext(), meetingID, actorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewMeetingResponse(m, time.Now(), false))
}

func (h *MeetingHandler) UpdatePassword(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	m, err := h.lifecycle.UpdateMeetingPassword(c.UserContext(), meetingID, actorID, scheduling.UpdatePasswordInput{
		Password:         req.Password,
		GeneratePassword: req.GeneratePassword,
		RemovePassword:   req.RemovePassword,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewMeetingResponse(m, time.Now(), true))
}

func (h *MeetingHandler) AddParticipants(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	var req dto.AddParticipantsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	added, err := h.lifecycle.AddParticipants(c.UserContext(), meetingID, actorID, req.ToInputs())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"participants": dto.NewParticipantResponses(added),
		"added":        len(added),
	})
}

func (h *MeetingHandler) ListParticipants(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	participants, err := h.lifecycle.ListParticipants(c.UserContext(), meetingID, actorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"participants": dto.NewParticipantResponses(participants),
	})
}

func (h *MeetingHandler) Respond(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	p, err := h.lifecycle.RespondToInvite(c.UserContext(), meetingID, actorID, models.ParticipantStatus(req.Status), req.Notes)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewParticipantResponse(p))
}

// ShareLink builds the join URL for a meeting. Only the organizer may embed
// the password or mint an invite token.
func (h *MeetingHandler) ShareLink(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	m, err := h.lifecycle.GetMeeting(c.UserContext(), meetingID, actorID)
	if err != nil {
		return respondError(c, err)
	}

	includePassword := c.QueryBool("include_password")
	withToken := c.QueryBool("with_token")
	if (includePassword || withToken) && m.OrganizerID != actorID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Only the organizer can share credentials",
		})
	}

	resp := dto.ShareLinkResponse{
		ShareLink: h.links.ShareLink(m, includePassword),
	}
	if withToken {
		if h.invites == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Invite links are not enabled",
			})
		}
		token, err := h.invites.Issue(c.UserContext(), m.ID, "")
		if err != nil {
			slog.Error("failed to issue invite token", "meeting_id", m.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to issue invite token",
			})
		}
		expires := time.Now().Add(h.invites.TTL())
		resp.Token = token
		resp.ExpiresAt = &expires
	}

	return c.JSON(resp)
}

// Join runs the access gate for one meeting. Authentication is optional:
// unauthenticated callers are treated as guests.
func (h *MeetingHandler) Join(c *fiber.Ctx) error {
	meetingID, err := parseMeetingID(c)
	if err != nil {
		return badRequest(c, "invalid meeting id")
	}

	info, err := h.gate.ValidateAccess(c.UserContext(), meetingID, joinPassword(c), middleware.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// JoinByChannel is Join keyed by the conference channel name.
func (h *MeetingHandler) JoinByChannel(c *fiber.Ctx) error {
	channel := c.Params("channel")
	if channel == "" {
		return badRequest(c, "channel name required")
	}

	info, err := h.gate.ValidateChannelAccess(c.UserContext(), channel, joinPassword(c), middleware.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// JoinByToken resolves an opaque invite token and runs the access gate on the
// meeting it names.
func (h *MeetingHandler) JoinByToken(c *fiber.Ctx) error {
	if h.invites == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Invite links are not enabled",
		})
	}

	claim, err := h.invites.Resolve(c.UserContext(), c.Params("token"))
	if err != nil {
		if errors.Is(err, invites.ErrTokenNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Invite link is invalid or has expired",
			})
		}
		slog.Error("failed to resolve invite token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resolve invite token",
		})
	}

	info, err := h.gate.ValidateAccess(c.UserContext(), claim.MeetingID, joinPassword(c), middleware.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// joinPassword reads the candidate join password from the body, falling back
// to the pwd query parameter share links carry.
func joinPassword(c *fiber.Ctx) string {
	var req dto.JoinRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err == nil && req.Password != "" {
			return req.Password
		}
	}
	return c.Query("pwd")
}

func parseMeetingID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// respondError translates scheduling errors into their HTTP status; anything
// else is a 500 with the detail kept out of the response.
func respondError(c *fiber.Ctx, err error) error {
	if schedErr, ok := scheduling.AsError(err); ok {
		return c.Status(schedErr.Status).JSON(dto.ErrorResponse{
			Error: true, Message: schedErr.Message,
		})
	}
	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func badRequestBody(c *fiber.Ctx) error {
	return badRequest(c, "Invalid request body")
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
