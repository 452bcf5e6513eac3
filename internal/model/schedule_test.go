package model

import (
	"testing"
	"time"
)

func TestApplyStartTimes(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []AgendaItem{
		{Title: "Intro", DurationInMinutes: 10},
		{Title: "Finance", DurationInMinutes: 50},
		{Title: "Misc", DurationInMinutes: 15},
	}

	ApplyStartTimes(start, items)

	want := []time.Time{
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 9, 10, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	for i, item := range items {
		if !item.StartTime.Equal(want[i]) {
			t.Errorf("item %d start = %v, want %v", i, item.StartTime, want[i])
		}
	}
}

func TestCalculateEndTime(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []AgendaItem{
		{DurationInMinutes: 10},
		{DurationInMinutes: 50},
	}

	end := CalculateEndTime(start, items)
	if want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	if end := CalculateEndTime(start, nil); !end.Equal(start) {
		t.Errorf("end with no items = %v, want %v", end, start)
	}
}

func TestCombineParticipants(t *testing.T) {
	tests := []struct {
		fixed, additional, want string
	}{
		{"a@x.com;b@x.com", "c@x.com", "a@x.com;b@x.com;c@x.com"},
		{"a@x.com", "", "a@x.com"},
		{"", "c@x.com", "c@x.com"},
		{"", "", ""},
		{"a@x.com;", ";c@x.com", "a@x.com;c@x.com"},
	}
	for _, tt := range tests {
		if got := CombineParticipants(tt.fixed, tt.additional); got != tt.want {
			t.Errorf("CombineParticipants(%q, %q) = %q, want %q", tt.fixed, tt.additional, got, tt.want)
		}
	}
}

func TestSplitParticipants(t *testing.T) {
	got := SplitParticipants("a@x.com; b@x.com;;a@x.com")
	want := []string{"a@x.com", "b@x.com", "a@x.com"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
	if SplitParticipants("") != nil {
		t.Error("empty list should yield nil")
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Budget Sync 2025 - Übersicht"); err != nil {
		t.Errorf("valid title rejected: %v", err)
	}
	if err := ValidateTitle(""); err == nil {
		t.Error("empty title accepted")
	}
	if err := ValidateTitle("Q3/Q4 Review"); err == nil {
		t.Error("slash accepted")
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateTitle(string(long)); err == nil {
		t.Error("overlong title accepted")
	}
}
