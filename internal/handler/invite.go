package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/invite"
	"github.com/CodeIvet/patanaa/internal/model"
)

// InviteHandler exposes the invite state machine: read-only classification
// and the automation that drives every invite to a sent, current event.
type InviteHandler struct {
	db         *gorm.DB
	classifier *invite.Classifier
	calendar   *CalendarHandler
}

func NewInviteHandler(db *gorm.DB, classifier *invite.Classifier, calendar *CalendarHandler) *InviteHandler {
	return &InviteHandler{db: db, classifier: classifier, calendar: calendar}
}

func (h *InviteHandler) loadMeeting(meetingID int64) (*model.BoardMeeting, []model.AgendaItem, error) {
	var meeting model.BoardMeeting
	if err := h.db.First(&meeting, `"ID" = ?`, meetingID).Error; err != nil {
		return nil, nil, err
	}
	var items []model.AgendaItem
	if err := h.db.Where(`"BoardMeeting" = ?`, meetingID).
		Order(`"OrderIndex" ASC`).
		Find(&items).Error; err != nil {
		return nil, nil, err
	}
	model.ApplyStartTimes(meeting.StartTime, items)
	return &meeting, items, nil
}

// GetInviteStatus classifies every invite of a meeting without touching the
// calendar.
func (h *InviteHandler) GetInviteStatus(c *fiber.Ctx) error {
	meetingID, err := strconv.ParseInt(c.Query("boardmeeting"), 10, 64)
	if err != nil || meetingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid boardmeeting id",
		})
	}

	meeting, items, err := h.loadMeeting(meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "board meeting not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	invites, err := h.classifier.ClassifyItems(c.Context(), meeting, items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(invites)
}

// ProcessInvites runs the automation until every invite is sent and current.
// The final classification is returned even when a stuck invite made the run
// give up.
func (h *InviteHandler) ProcessInvites(c *fiber.Ctx) error {
	var req struct {
		BoardMeetingID int64 `json:"boardMeetingId"`
	}
	if err := c.BodyParser(&req); err != nil || req.BoardMeetingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}

	if _, _, err := h.loadMeeting(req.BoardMeetingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "board meeting not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	actions := &inviteActions{handler: h, meetingID: req.BoardMeetingID}
	invites, err := invite.RunAutomation(c.Context(), actions)
	if err != nil {
		if errors.Is(err, invite.ErrNotConverged) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   err.Error(),
				"invites": invites,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "All invites sent and up to date",
		"invites": invites,
	})
}

// inviteActions binds the automation to one meeting's database rows and
// calendar events.
type inviteActions struct {
	handler   *InviteHandler
	meetingID int64
}

func (a *inviteActions) Refresh(ctx context.Context) ([]invite.Item, error) {
	meeting, items, err := a.handler.loadMeeting(a.meetingID)
	if err != nil {
		return nil, err
	}
	return a.handler.classifier.ClassifyItems(ctx, meeting, items)
}

func (a *inviteActions) CreateOrUpdate(ctx context.Context, item invite.Item) error {
	meeting, items, err := a.handler.loadMeeting(a.meetingID)
	if err != nil {
		return err
	}
	createNew := item.Status == invite.StatusMissing

	if item.Kind == invite.KindMeeting {
		eventID, joinURL, err := a.handler.calendar.UpsertMeetingEvent(ctx, meeting, items, createNew)
		if err != nil {
			return err
		}
		updates := map[string]any{"EventId": eventID}
		if joinURL != "" {
			updates["MeetingLink"] = joinURL
		}
		return a.handler.db.Model(&model.BoardMeeting{}).
			Where(`"ID" = ?`, meeting.ID).
			Updates(updates).Error
	}

	var top *model.AgendaItem
	for i := range items {
		if items[i].ID == item.ID {
			top = &items[i]
			break
		}
	}
	if top == nil {
		return fmt.Errorf("agenda item %d vanished during automation", item.ID)
	}

	eventID, err := a.handler.calendar.UpsertAgendaEvent(ctx, &AgendaEventRequest{
		MainMeeting:   *meeting,
		IsCreateAsNew: createNew,
		IsAlreadySent: item.Status == invite.StatusStaleSent,
		ID:            top.ID,
		Title:         top.Title,
		Participants:  top.AdditionalParticipants,
		StartTime:     item.Start,
		EndTime:       item.End,
		EventID:       item.EventID,
		TimeZone:      meeting.TimeZone,
	})
	if err != nil {
		return err
	}
	return a.handler.db.Model(&model.AgendaItem{}).
		Where(`"ID" = ?`, top.ID).
		Update("EventId", eventID).Error
}
