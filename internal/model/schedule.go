package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var titlePattern = regexp.MustCompile(`^[0-9A-Za-z_\s\-äöüÄÖÜß.]+$`)

// ValidateTitle checks a meeting or agenda title against the folder-safe
// character set and the column width.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if len(title) > 100 {
		return fmt.Errorf("title must not exceed 100 characters")
	}
	if !titlePattern.MatchString(title) {
		return fmt.Errorf("title contains characters that are not allowed")
	}
	return nil
}

// SplitParticipants parses a semicolon-delimited participant list. Empty
// entries are dropped, order and duplicates are preserved.
func SplitParticipants(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinParticipants is the inverse of SplitParticipants.
func JoinParticipants(upns []string) string {
	return strings.Join(upns, ";")
}

// CombineParticipants joins the meeting's fixed list with an item's
// additional list into a single semicolon string, collapsing the separator
// where either side is empty.
func CombineParticipants(fixed, additional string) string {
	combined := fixed + ";" + additional
	combined = strings.ReplaceAll(combined, ";;", ";")
	return strings.Trim(combined, ";")
}

// ApplyStartTimes derives each item's start time from the meeting start and
// the cumulative duration of the items before it. Items must already be in
// agenda order.
func ApplyStartTimes(meetingStart time.Time, items []AgendaItem) {
	offset := 0
	for i := range items {
		items[i].StartTime = meetingStart.Add(time.Duration(offset) * time.Minute)
		offset += items[i].DurationInMinutes
	}
}

// CalculateEndTime returns the meeting end: start plus the summed item
// durations.
func CalculateEndTime(meetingStart time.Time, items []AgendaItem) time.Time {
	total := 0
	for _, item := range items {
		total += item.DurationInMinutes
	}
	return meetingStart.Add(time.Duration(total) * time.Minute)
}

// StartInZone converts the meeting start into its configured time zone,
// falling back to UTC when the zone is unknown.
func (m *BoardMeeting) StartInZone() time.Time {
	loc, err := time.LoadLocation(m.TimeZone)
	if err != nil {
		return m.StartTime.UTC()
	}
	return m.StartTime.In(loc)
}
