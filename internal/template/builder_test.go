package template

import (
	"context"
	"testing"
	"time"

	"github.com/CodeIvet/patanaa/internal/model"
)

type fakeResolver struct {
	names map[string]string
	seen  []string
}

func (r *fakeResolver) ResolveNames(ctx context.Context, upns []string) (map[string]string, error) {
	r.seen = upns
	return r.names, nil
}

func testMeeting() *model.BoardMeeting {
	return &model.BoardMeeting{
		ID:                1,
		Title:             "Budget Sync",
		StartTime:         time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		TimeZone:          "UTC",
		Location:          "HQ",
		FixedParticipants: "mueller@example.com;schmidt@example.com",
	}
}

func testItems() []model.AgendaItem {
	items := []model.AgendaItem{
		{ID: 10, Title: "Intro", DurationInMinutes: 10, AdditionalParticipants: "guest@other.com;mueller@example.com"},
		{ID: 11, Title: "Finance", DurationInMinutes: 50, NeedsDecision: true, Remarks: "bring numbers"},
		{ID: 12, Title: "Misc", DurationInMinutes: 5, IsMisc: true},
	}
	model.ApplyStartTimes(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), items)
	return items
}

func TestUniqueParticipantsKeepsFirstAppearanceOrder(t *testing.T) {
	got := uniqueParticipants(testMeeting(), testItems())
	want := []string{"mueller@example.com", "schmidt@example.com", "guest@other.com"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("participant %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildAgendaData(t *testing.T) {
	resolver := &fakeResolver{names: map[string]string{
		"mueller@example.com": "Müller, Anna",
		"schmidt@example.com": "Schmidt, Ben",
		"guest@other.com":     "guest@other.com",
	}}

	data, err := BuildAgendaData(context.Background(), resolver, testMeeting(), testItems(), "en", true)
	if err != nil {
		t.Fatalf("BuildAgendaData: %v", err)
	}

	if data.MeetingTitle != "Budget Sync" {
		t.Errorf("title = %q", data.MeetingTitle)
	}
	if data.MeetingDate != "Saturday, March 1, 2025" {
		t.Errorf("date = %q", data.MeetingDate)
	}
	if data.MeetingTime != "09:00" {
		t.Errorf("time = %q", data.MeetingTime)
	}
	if data.MeetingEndTime != "10:05" {
		t.Errorf("end = %q", data.MeetingEndTime)
	}

	if len(data.FixedParticipants) != 2 {
		t.Fatalf("fixed = %v", data.FixedParticipants)
	}
	if data.FixedParticipants[0].FixedPerson != "Anna Müller" {
		t.Errorf("fixed[0] = %q", data.FixedParticipants[0].FixedPerson)
	}
	if data.FixedParticipants[0].TotalTops != 3 {
		t.Errorf("totalTops = %d", data.FixedParticipants[0].TotalTops)
	}

	if len(data.TopsDetails) != 3 {
		t.Fatalf("tops = %d", len(data.TopsDetails))
	}
	intro := data.TopsDetails[0]
	if intro.I != "1" || intro.StartTime != "09:00" {
		t.Errorf("intro = %+v", intro)
	}
	if intro.AdditionalParticipants != "guest@other.com, Anna Müller" {
		t.Errorf("intro additional = %q", intro.AdditionalParticipants)
	}
	if !intro.HasAdditionalParticipants || !intro.HasBody {
		t.Errorf("intro flags = %+v", intro)
	}
	if intro.IncludeRemarks == nil || !*intro.IncludeRemarks {
		t.Error("includeRemarks not set")
	}

	finance := data.TopsDetails[1]
	if finance.StartTime != "09:10" || !finance.IsDecision {
		t.Errorf("finance = %+v", finance)
	}

	misc := data.TopsDetails[2]
	if !misc.IsMisc || misc.HasBody {
		t.Errorf("misc = %+v", misc)
	}
}

func TestBuildProtocolDataHasBodyNeedsRemarks(t *testing.T) {
	resolver := &fakeResolver{names: map[string]string{}}

	data, err := BuildProtocolData(context.Background(), resolver, testMeeting(), testItems(), "de")
	if err != nil {
		t.Fatalf("BuildProtocolData: %v", err)
	}

	if data.MeetingDate != "1.3.2025" {
		t.Errorf("date = %q", data.MeetingDate)
	}
	if data.TopsCount != 3 {
		t.Errorf("topsCount = %d", data.TopsCount)
	}
	// Only a non-misc item with remarks carries a body.
	if data.TopsDetails[0].HasBody {
		t.Error("item without remarks has body")
	}
	if !data.TopsDetails[1].HasBody {
		t.Error("item with remarks lacks body")
	}
	if data.TopsDetails[2].HasBody {
		t.Error("misc item has body")
	}
}

func TestFormatDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Müller, Anna", "Anna Müller"},
		{"Cher", "Cher"},
		{"guest@other.com", "guest@other.com"},
		{"", "Unknown Participant"},
		{", ", "Unknown Participant"},
	}
	for _, tt := range tests {
		if got := FormatDisplayName(tt.in); got != tt.want {
			t.Errorf("FormatDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocaleDates(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := LongDate(date, "de"); got != "Samstag, 1. März 2025" {
		t.Errorf("LongDate de = %q", got)
	}
	if got := LongDate(date, "en"); got != "Saturday, March 1, 2025" {
		t.Errorf("LongDate en = %q", got)
	}
	if got := ShortDate(date, "de"); got != "1.3.2025" {
		t.Errorf("ShortDate de = %q", got)
	}
	if got := ShortDate(date, "en"); got != "3/1/2025" {
		t.Errorf("ShortDate en = %q", got)
	}
}
