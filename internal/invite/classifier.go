package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
)

// EventFetcher loads calendar events, nil for gone events.
type EventFetcher interface {
	GetEvent(ctx context.Context, eventID string) (*graph.Event, error)
}

// ProfileResolver maps UPNs to directory profiles.
type ProfileResolver interface {
	GetUserProfiles(ctx context.Context, upns []string) ([]graph.UserProfile, error)
}

// Item is one classified invite, the main meeting first.
type Item struct {
	ID           int64     `json:"id"`
	Kind         Kind      `json:"type"`
	Title        string    `json:"title"`
	EventID      string    `json:"eventId"`
	Participants string    `json:"participants"`
	Start        time.Time `json:"startTime"`
	End          time.Time `json:"endTime"`
	Location     string    `json:"location"`
	Room         string    `json:"room"`
	Status       Status    `json:"status"`
	WebLink      string    `json:"webLink,omitempty"`
}

// Classifier resolves the live status of every invite of a meeting.
type Classifier struct {
	events   EventFetcher
	profiles ProfileResolver
}

func NewClassifier(events EventFetcher, profiles ProfileResolver) *Classifier {
	return &Classifier{events: events, profiles: profiles}
}

// ClassifyItems builds the invite list for a meeting and classifies each
// entry against its calendar event. Item start times must already be derived.
func (c *Classifier) ClassifyItems(ctx context.Context, meeting *model.BoardMeeting, items []model.AgendaItem) ([]Item, error) {
	end := model.CalculateEndTime(meeting.StartTime, items)

	invites := make([]Item, 0, len(items)+1)
	invites = append(invites, Item{
		ID:           meeting.ID,
		Kind:         KindMeeting,
		Title:        meeting.Title,
		EventID:      deref(meeting.EventID),
		Participants: meeting.FixedParticipants,
		Start:        meeting.StartTime,
		End:          end,
		Location:     meeting.Location,
		Room:         meeting.Room,
	})
	for _, item := range items {
		invites = append(invites, Item{
			ID:           item.ID,
			Kind:         KindAgendaItem,
			Title:        item.Title,
			EventID:      deref(item.EventID),
			Participants: item.AdditionalParticipants,
			Start:        item.StartTime,
			End:          item.StartTime.Add(time.Duration(item.DurationInMinutes) * time.Minute),
			Location:     meeting.Location,
			Room:         meeting.Room,
		})
	}

	for i := range invites {
		invite := &invites[i]
		if invite.EventID == "" {
			invite.Status = StatusMissing
			continue
		}

		event, err := c.events.GetEvent(ctx, invite.EventID)
		if err != nil {
			invite.Status = StatusUnknown
			continue
		}
		if event == nil {
			invite.Status = StatusMissing
			continue
		}

		observed, err := observe(event)
		if err != nil {
			invite.Status = StatusUnknown
			continue
		}
		invite.WebLink = observed.WebLink

		expectedMails, err := c.expectedMails(ctx, invite.Kind, meeting.FixedParticipants, invite.Participants)
		if err != nil {
			return nil, err
		}

		invite.Status = Classify(Expected{
			Kind:          invite.Kind,
			Title:         invite.Title,
			MeetingTitle:  meeting.Title,
			Start:         invite.Start,
			End:           invite.End,
			Room:          invite.Room,
			AttendeeMails: expectedMails,
		}, observed)
	}

	return invites, nil
}

// expectedMails resolves the combined participant list to primary mail
// addresses. The main meeting skips the lookup since its attendees are not
// compared.
func (c *Classifier) expectedMails(ctx context.Context, kind Kind, fixed, additional string) ([]string, error) {
	if kind == KindMeeting {
		return nil, nil
	}
	upns := model.SplitParticipants(model.CombineParticipants(fixed, additional))
	if len(upns) == 0 {
		return nil, nil
	}
	profiles, err := c.profiles.GetUserProfiles(ctx, upns)
	if err != nil {
		return nil, fmt.Errorf("resolve attendee mails: %w", err)
	}
	mails := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		mails = append(mails, profile.Mail)
	}
	return mails, nil
}

func observe(event *graph.Event) (*Observed, error) {
	start, err := parseGraphTime(event.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseGraphTime(event.End)
	if err != nil {
		return nil, err
	}

	observed := &Observed{
		Subject: event.Subject,
		Start:   start,
		End:     end,
		IsDraft: event.IsDraft != nil && *event.IsDraft,
		WebLink: event.WebLink,
	}
	if event.Location != nil {
		observed.Room = event.Location.DisplayName
	}
	for _, attendee := range event.Attendees {
		observed.AttendeeMails = append(observed.AttendeeMails, attendee.EmailAddress.Address)
	}
	return observed, nil
}

// parseGraphTime interprets Graph's zoneless dateTime in its declared zone.
func parseGraphTime(dtz *graph.DateTimeZone) (time.Time, error) {
	if dtz == nil {
		return time.Time{}, fmt.Errorf("event is missing a timestamp")
	}
	loc, err := time.LoadLocation(dtz.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	value := strings.TrimSuffix(dtz.DateTime, "Z")
	for _, layout := range []string{
		"2006-01-02T15:04:05.9999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event time %q", dtz.DateTime)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
