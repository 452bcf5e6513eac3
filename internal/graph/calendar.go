package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// CalendarClient performs calendar operations against a single shared
// mailbox.
type CalendarClient struct {
	c       *Client
	mailbox string
}

// NewCalendarClient creates a client bound to the event mailbox.
func NewCalendarClient(c *Client, mailbox string) *CalendarClient {
	return &CalendarClient{c: c, mailbox: mailbox}
}

// DateTimeZone is Graph's dateTimeTimeZone.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// EmailAddress names an attendee.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Attendee is a Graph attendee entry.
type Attendee struct {
	EmailAddress EmailAddress `json:"emailAddress"`
	Type         string       `json:"type"`
}

// ItemBody is a Graph item body.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Location is a Graph location.
type Location struct {
	DisplayName string `json:"displayName"`
}

// OnlineMeetingInfo carries the Teams join link of an online meeting.
type OnlineMeetingInfo struct {
	JoinURL string `json:"joinUrl"`
}

// Event is the subset of the Graph event resource this service reads and
// writes. Optional write-only fields are pointers so PATCH payloads omit
// them.
type Event struct {
	ID                         string             `json:"id,omitempty"`
	Subject                    string             `json:"subject,omitempty"`
	Start                      *DateTimeZone      `json:"start,omitempty"`
	End                        *DateTimeZone      `json:"end,omitempty"`
	Location                   *Location          `json:"location,omitempty"`
	Attendees                  []Attendee         `json:"attendees,omitempty"`
	Body                       *ItemBody          `json:"body,omitempty"`
	IsDraft                    *bool              `json:"isDraft,omitempty"`
	IsOnlineMeeting            *bool              `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider      string             `json:"onlineMeetingProvider,omitempty"`
	OnlineMeeting              *OnlineMeetingInfo `json:"onlineMeeting,omitempty"`
	WebLink                    string             `json:"webLink,omitempty"`
	ReminderMinutesBeforeStart *int               `json:"reminderMinutesBeforeStart,omitempty"`
	IsReminderOn               *bool              `json:"isReminderOn,omitempty"`
}

// MakeAttendees maps mail addresses to required attendees, dropping empties.
func MakeAttendees(addresses []string) []Attendee {
	attendees := make([]Attendee, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		attendees = append(attendees, Attendee{
			EmailAddress: EmailAddress{Address: addr},
			Type:         "required",
		})
	}
	return attendees
}

func (cc *CalendarClient) eventsPath() string {
	return "/users/" + url.PathEscape(cc.mailbox) + "/calendar/events"
}

func (cc *CalendarClient) eventPath(eventID string) string {
	return "/users/" + url.PathEscape(cc.mailbox) + "/events/" + url.PathEscape(eventID)
}

// CreateEvent posts a new event into the mailbox calendar.
func (cc *CalendarClient) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	var created Event
	if err := cc.c.do(ctx, http.MethodPost, cc.eventsPath(), nil, event, &created); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &created, nil
}

// UpdateEvent patches an existing event.
func (cc *CalendarClient) UpdateEvent(ctx context.Context, eventID string, patch *Event) (*Event, error) {
	var updated Event
	if err := cc.c.do(ctx, http.MethodPatch, cc.eventsPath()+"/"+url.PathEscape(eventID), nil, patch, &updated); err != nil {
		return nil, fmt.Errorf("update event %s: %w", eventID, err)
	}
	return &updated, nil
}

// CancelEvent cancels an event, which sends cancellations to attendees of a
// sent invite and deletes a draft.
func (cc *CalendarClient) CancelEvent(ctx context.Context, eventID string) error {
	return cc.c.do(ctx, http.MethodPost, cc.eventPath(eventID)+"/cancel", nil, map[string]any{}, nil)
}

// GetEvent fetches an event, (nil, nil) when it no longer exists.
func (cc *CalendarClient) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var event Event
	err := cc.c.do(ctx, http.MethodGet, cc.eventPath(eventID), nil, nil, &event)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// GetMailBody returns an event's HTML body with line breaks and whitespace
// runs collapsed, ready for reuse in other events.
func (cc *CalendarClient) GetMailBody(ctx context.Context, eventID string) (string, error) {
	var event Event
	query := url.Values{"$select": {"body"}}
	if err := cc.c.do(ctx, http.MethodGet, cc.eventPath(eventID), query, nil, &event); err != nil {
		return "", err
	}
	if event.Body == nil {
		return "", nil
	}
	content := strings.ReplaceAll(event.Body.Content, "\r\n", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(content, " ")), nil
}

// ConfigureOnlineMeeting patches the Teams meeting behind a freshly created
// event: lobby bypass for the organizer only, the configured hosts promoted
// to co-organizers. The online-meeting options live on the beta endpoint.
func (cc *CalendarClient) ConfigureOnlineMeeting(ctx context.Context, joinWebURL string, hostUpns []string) error {
	organizerID, err := cc.c.GetUserID(ctx, cc.mailbox)
	if err != nil {
		return fmt.Errorf("resolve event mailbox id: %w", err)
	}

	var meetings struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	query := url.Values{"$filter": {"JoinWebUrl eq '" + joinWebURL + "'"}}
	path := "/users/" + url.PathEscape(organizerID) + "/onlineMeetings"
	if err := cc.c.do(ctx, http.MethodGet, path, query, nil, &meetings); err != nil {
		return fmt.Errorf("find online meeting: %w", err)
	}
	if len(meetings.Value) == 0 {
		return fmt.Errorf("no online meeting found for join url")
	}

	coOrganizers := make([]map[string]any, 0, len(hostUpns))
	for _, upn := range hostUpns {
		if upn = strings.TrimSpace(upn); upn != "" {
			coOrganizers = append(coOrganizers, map[string]any{"upn": upn, "role": "coorganizer"})
		}
	}

	options := map[string]any{
		"lobbyBypassSettings": map[string]any{
			"isDialInBypassEnabled": false,
			"scope":                 "organizer",
		},
		"allowedLobbyAdmitters": "organizerAndCoOrganizers",
		"participants": map[string]any{
			"attendees": coOrganizers,
		},
	}

	patchURL := "https://graph.microsoft.com/beta/users/" + url.PathEscape(organizerID) +
		"/onlineMeetings/" + url.PathEscape(meetings.Value[0].ID)
	if err := cc.c.do(ctx, http.MethodPatch, patchURL, nil, options, nil); err != nil {
		return fmt.Errorf("patch meeting options: %w", err)
	}
	return nil
}
