package handler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/config"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
)

// CalendarHandler creates and maintains the Outlook events behind meetings
// and agenda items.
type CalendarHandler struct {
	db       *gorm.DB
	calendar *graph.CalendarClient
	drive    *graph.DriveClient
	cfg      config.CalendarConfig
}

func NewCalendarHandler(db *gorm.DB, calendar *graph.CalendarClient, drive *graph.DriveClient, cfg config.CalendarConfig) *CalendarHandler {
	return &CalendarHandler{db: db, calendar: calendar, drive: drive, cfg: cfg}
}

// MeetingEventRequest carries the meeting row plus the mode flags.
type MeetingEventRequest struct {
	model.BoardMeeting
	IsCreateAsNew bool               `json:"isCreateAsNew"`
	AgendaItems   []model.AgendaItem `json:"agendaItems"`
}

// AgendaEventRequest carries one invite plus its parent meeting.
type AgendaEventRequest struct {
	MainMeeting   model.BoardMeeting `json:"mainMeeting"`
	IsCreateAsNew bool               `json:"isCreateAsNew"`
	IsAlreadySent bool               `json:"isAlreadySent"`
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Participants  string             `json:"participants"`
	StartTime     time.Time          `json:"startTime"`
	EndTime       time.Time          `json:"endTime"`
	EventID       string             `json:"eventId"`
	TimeZone      string             `json:"timeZone"`
}

// MeetingEventResponse returns the ids the client persists.
type MeetingEventResponse struct {
	EventID string `json:"eventId"`
	JoinURL string `json:"joinUrl"`
}

// CreateUpdateBoardMeetingCalendarItem creates the main online meeting or
// patches its subject, times and location.
func (h *CalendarHandler) CreateUpdateBoardMeetingCalendarItem(c *fiber.Ctx) error {
	var req MeetingEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	eventID, joinURL, err := h.UpsertMeetingEvent(c.Context(), &req.BoardMeeting, req.AgendaItems, req.IsCreateAsNew)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(MeetingEventResponse{EventID: eventID, JoinURL: joinURL})
}

// CreateUpdateAgendaItemCalendarItem creates or updates the event of one
// agenda item.
func (h *CalendarHandler) CreateUpdateAgendaItemCalendarItem(c *fiber.Ctx) error {
	var req AgendaEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	eventID, err := h.UpsertAgendaEvent(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(eventID)
}

// GetCalendarItem returns the raw event, or the literal body "false" when it
// no longer exists, so the client can distinguish gone from failed.
func (h *CalendarHandler) GetCalendarItem(c *fiber.Ctx) error {
	eventID := c.Query("eventId")
	if eventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "eventId is missing",
		})
	}

	event, err := h.calendar.GetEvent(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if event == nil {
		return c.SendString("false")
	}
	return c.JSON(event)
}

// UpsertMeetingEvent creates the Teams meeting (fixed hosts as attendees,
// lobby locked down, hosts as co-organizers) or patches the schedule fields
// of the existing event.
func (h *CalendarHandler) UpsertMeetingEvent(ctx context.Context, meeting *model.BoardMeeting, items []model.AgendaItem, createNew bool) (string, string, error) {
	start := meeting.StartInZone()
	end := model.CalculateEndTime(start, items)
	hosts := model.SplitParticipants(h.cfg.OnlineMeetingHosts)

	patch := &graph.Event{
		Subject:  meeting.Title,
		Start:    &graph.DateTimeZone{DateTime: formatEventTime(start), TimeZone: meeting.TimeZone},
		End:      &graph.DateTimeZone{DateTime: formatEventTime(end), TimeZone: meeting.TimeZone},
		Location: &graph.Location{DisplayName: meeting.Room},
	}

	if !createNew {
		if meeting.EventID == nil || *meeting.EventID == "" {
			return "", "", fmt.Errorf("meeting has no event to update")
		}
		updated, err := h.calendar.UpdateEvent(ctx, *meeting.EventID, patch)
		if err != nil {
			return "", "", err
		}
		joinURL := ""
		if updated.OnlineMeeting != nil {
			joinURL = updated.OnlineMeeting.JoinURL
		}
		return updated.ID, joinURL, nil
	}

	online := true
	reminderOff := false
	zero := 0
	event := *patch
	event.Attendees = graph.MakeAttendees(hosts)
	event.Body = &graph.ItemBody{ContentType: "HTML", Content: h.meetingMailBody(hosts)}
	event.IsOnlineMeeting = &online
	event.OnlineMeetingProvider = "teamsForBusiness"
	event.ReminderMinutesBeforeStart = &zero
	event.IsReminderOn = &reminderOff

	created, err := h.calendar.CreateEvent(ctx, &event)
	if err != nil {
		return "", "", err
	}
	joinURL := ""
	if created.OnlineMeeting != nil {
		joinURL = created.OnlineMeeting.JoinURL
	}

	if joinURL != "" {
		if err := h.calendar.ConfigureOnlineMeeting(ctx, joinURL, hosts); err != nil {
			return "", "", err
		}
		h.refreshJoinLinkFile(ctx, meeting, joinURL)
	}

	return created.ID, joinURL, nil
}

// UpsertAgendaEvent creates or fully rewrites an agenda item's event. The
// attendee list combines the meeting's fixed participants with the item's
// own, the body is copied from the main meeting event, and the draft flag
// tracks whether the invite was already sent.
func (h *CalendarHandler) UpsertAgendaEvent(ctx context.Context, req *AgendaEventRequest) (string, error) {
	combined := model.CombineParticipants(req.MainMeeting.FixedParticipants, req.Participants)

	mailBody := ""
	if req.MainMeeting.EventID != nil && *req.MainMeeting.EventID != "" {
		var err error
		mailBody, err = h.calendar.GetMailBody(ctx, *req.MainMeeting.EventID)
		if err != nil && !graph.IsNotFound(err) {
			return "", fmt.Errorf("fetch meeting mail body: %w", err)
		}
	}

	timeZone := req.TimeZone
	if timeZone == "" {
		timeZone = req.MainMeeting.TimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		loc = time.UTC
	}

	isDraft := !req.IsAlreadySent
	reminderOff := false
	zero := 0
	event := &graph.Event{
		Subject:                    req.Title,
		Start:                      &graph.DateTimeZone{DateTime: formatEventTime(req.StartTime.In(loc)), TimeZone: timeZone},
		End:                        &graph.DateTimeZone{DateTime: formatEventTime(req.EndTime.In(loc)), TimeZone: timeZone},
		Location:                   &graph.Location{DisplayName: req.MainMeeting.Room},
		Attendees:                  graph.MakeAttendees(model.SplitParticipants(combined)),
		Body:                       &graph.ItemBody{ContentType: "HTML", Content: mailBody},
		IsDraft:                    &isDraft,
		ReminderMinutesBeforeStart: &zero,
		IsReminderOn:               &reminderOff,
	}

	if req.IsCreateAsNew {
		created, err := h.calendar.CreateEvent(ctx, event)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}
	if req.EventID == "" {
		return "", fmt.Errorf("agenda item has no event to update")
	}
	updated, err := h.calendar.UpdateEvent(ctx, req.EventID, event)
	if err != nil {
		return "", err
	}
	return updated.ID, nil
}

// meetingMailBody is the standard invite text, signed with the first host's
// first name.
func (h *CalendarHandler) meetingMailBody(hosts []string) string {
	firstName := ""
	if len(hosts) > 0 {
		local, _, _ := strings.Cut(hosts[0], "@")
		name, _, _ := strings.Cut(local, ".")
		if name != "" {
			firstName = strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
		}
	}
	return fmt.Sprintf(`Dear participants,<br>
Should you wish to present a deck or one-pager, please send it to <a href="mailto:%s">%s</a>
<u><strong>48 hours prior to the meeting.</strong></u>
It will then be forwarded to the board.
<br>
Best,<br>
%s`, h.cfg.EventMailbox, h.cfg.EventMailbox, firstName)
}

// refreshJoinLinkFile drops a shortcut to the Teams meeting into the meeting
// folder, replacing stale ones. Failures only log; the invite itself is what
// matters.
func (h *CalendarHandler) refreshJoinLinkFile(ctx context.Context, meeting *model.BoardMeeting, joinURL string) {
	if meeting.FileLocationID == nil || *meeting.FileLocationID == "" {
		return
	}
	if err := h.drive.DeleteLinkFiles(ctx, *meeting.FileLocationID); err != nil && !graph.IsNotFound(err) {
		log.Printf("sweeping old link files failed: %v", err)
	}
	if err := h.drive.CreateLinkFile(ctx, *meeting.FileLocationID, "Join Meeting", joinURL); err != nil {
		log.Printf("creating join link file failed: %v", err)
	}
}

// formatEventTime renders a zoneless local timestamp for Graph.
func formatEventTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
