package invite

import (
	"testing"
	"time"
)

func q3Expected() Expected {
	return Expected{
		Kind:          KindAgendaItem,
		Title:         "Q3 Review",
		MeetingTitle:  "Board Meeting March",
		Start:         time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		End:           time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Room:          "Room A",
		AttendeeMails: []string{"a@example.com", "b@example.com"},
	}
}

func q3Observed() *Observed {
	return &Observed{
		Subject:       "Q3 Review",
		Start:         time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		End:           time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Room:          "Room A",
		AttendeeMails: []string{"b@example.com", "a@example.com"},
	}
}

func TestClassifyMissing(t *testing.T) {
	if got := Classify(q3Expected(), nil); got != StatusMissing {
		t.Errorf("status = %v, want missing", got)
	}
}

func TestClassifyMatchingDraftIsUnsent(t *testing.T) {
	observed := q3Observed()
	observed.IsDraft = true
	if got := Classify(q3Expected(), observed); got != StatusUnsentDraft {
		t.Errorf("status = %v, want unsentDraft", got)
	}
}

func TestClassifyMatchingSentIsCurrent(t *testing.T) {
	if got := Classify(q3Expected(), q3Observed()); got != StatusSentCurrent {
		t.Errorf("status = %v, want sentCurrent", got)
	}
}

func TestClassifyDriftedStartIsStale(t *testing.T) {
	observed := q3Observed()
	observed.Start = observed.Start.Add(15 * time.Minute)

	if got := Classify(q3Expected(), observed); got != StatusStaleSent {
		t.Errorf("sent drift = %v, want staleSent", got)
	}

	observed.IsDraft = true
	if got := Classify(q3Expected(), observed); got != StatusStaleUnsent {
		t.Errorf("draft drift = %v, want staleUnsent", got)
	}
}

func TestClassifyAcceptsPrefixedSubject(t *testing.T) {
	observed := q3Observed()
	observed.Subject = "Board Meeting March - Q3 Review"
	if got := Classify(q3Expected(), observed); got != StatusSentCurrent {
		t.Errorf("status = %v, want sentCurrent", got)
	}
}

func TestClassifyComparesTimesInUTC(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	observed := q3Observed()
	observed.Start = time.Date(2025, 3, 1, 10, 0, 0, 0, berlin)
	observed.End = time.Date(2025, 3, 1, 10, 30, 0, 0, berlin)
	if got := Classify(q3Expected(), observed); got != StatusSentCurrent {
		t.Errorf("status = %v, want sentCurrent for equal instants", got)
	}
}

func TestClassifyAttendeeRules(t *testing.T) {
	expected := q3Expected()
	observed := q3Observed()
	observed.AttendeeMails = []string{"a@example.com"}
	if got := Classify(expected, observed); got != StatusStaleSent {
		t.Errorf("attendee mismatch = %v, want staleSent", got)
	}

	// Main meeting ignores attendees and room.
	expected.Kind = KindMeeting
	observed.Room = "somewhere else"
	if got := Classify(expected, observed); got != StatusSentCurrent {
		t.Errorf("meeting attendee mismatch = %v, want sentCurrent", got)
	}

	// Both sides empty counts as matching.
	expected = q3Expected()
	expected.AttendeeMails = nil
	observed = q3Observed()
	observed.AttendeeMails = nil
	if got := Classify(expected, observed); got != StatusSentCurrent {
		t.Errorf("empty attendees = %v, want sentCurrent", got)
	}
}

func TestClassifyRoomOnlyCountsForAgendaItems(t *testing.T) {
	expected := q3Expected()
	observed := q3Observed()
	observed.Room = "Room B"
	if got := Classify(expected, observed); got != StatusStaleSent {
		t.Errorf("room mismatch = %v, want staleSent", got)
	}
}

func TestStatusActionRequired(t *testing.T) {
	needAction := []Status{StatusMissing, StatusUnsentDraft, StatusStaleUnsent, StatusStaleSent, StatusUnknown}
	for _, s := range needAction {
		if !s.ActionRequired() {
			t.Errorf("%v should require action", s)
		}
	}
	for _, s := range []Status{StatusCreated, StatusSentCurrent} {
		if s.ActionRequired() {
			t.Errorf("%v should not require action", s)
		}
	}
}
