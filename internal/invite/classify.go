package invite

import (
	"sort"
	"time"
)

// Kind distinguishes the main meeting invite from agenda item invites.
type Kind string

const (
	KindMeeting    Kind = "meeting"
	KindAgendaItem Kind = "agendaItem"
)

// Expected is the invite the agenda calls for.
type Expected struct {
	Kind          Kind
	Title         string
	MeetingTitle  string
	Start         time.Time
	End           time.Time
	Room          string
	AttendeeMails []string
}

// Observed is the calendar event actually found, nil when it is gone.
type Observed struct {
	Subject       string
	Start         time.Time
	End           time.Time
	Room          string
	IsDraft       bool
	AttendeeMails []string
	WebLink       string
}

// Classify compares the expected invite with the observed event. The subject
// may be either the bare title or "<meeting title> - <title>". Attendees and
// room only count for agenda items; the main invite carries fixed hosts the
// agenda does not track.
func Classify(expected Expected, observed *Observed) Status {
	if observed == nil {
		return StatusMissing
	}

	subjectMatch := observed.Subject == expected.Title ||
		observed.Subject == expected.MeetingTitle+" - "+expected.Title

	match := subjectMatch &&
		(expected.Kind == KindMeeting || attendeesMatch(observed.AttendeeMails, expected.AttendeeMails)) &&
		observed.Start.UTC().Equal(expected.Start.UTC()) &&
		observed.End.UTC().Equal(expected.End.UTC()) &&
		(expected.Kind == KindMeeting || observed.Room == expected.Room)

	switch {
	case match && observed.IsDraft:
		return StatusUnsentDraft
	case match:
		return StatusSentCurrent
	case observed.IsDraft:
		return StatusStaleUnsent
	default:
		return StatusStaleSent
	}
}

// attendeesMatch compares the two mail sets ignoring order. Two empty sets
// match.
func attendeesMatch(observed, expected []string) bool {
	if len(observed) == 0 && len(expected) == 0 {
		return true
	}

	dedupe := func(mails []string) []string {
		seen := map[string]bool{}
		out := make([]string, 0, len(mails))
		for _, mail := range mails {
			if mail != "" && !seen[mail] {
				seen[mail] = true
				out = append(out, mail)
			}
		}
		sort.Strings(out)
		return out
	}

	a, b := dedupe(observed), dedupe(expected)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
