package mapper

import (
	"reflect"
	"testing"
)

func TestToDomain(t *testing.T) {
	rows := []map[string]any{
		{"ID": int64(7), "StartTime": "2025-03-01T09:00:00Z", "FileLocationId": "abc"},
	}

	got := ToDomain(rows)
	want := []map[string]any{
		{"id": int64(7), "startTime": "2025-03-01T09:00:00Z", "fileLocationId": "abc"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToDomain = %v, want %v", got, want)
	}
}

func TestToStorage(t *testing.T) {
	rows := []map[string]any{
		{"id": int64(7), "orderIndex": 2, "eventId": nil},
	}

	got := ToStorage(rows)
	want := []map[string]any{
		{"ID": int64(7), "OrderIndex": 2, "EventId": nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToStorage = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	rows := []map[string]any{
		{"ID": int64(1), "Title": "Budget Sync", "BoardMeeting": nil, "IsMisc": false},
		{"ID": int64(2), "Title": "Übersicht", "DurationInMinutes": 15},
	}

	back := ToStorage(ToDomain(rows))
	if !reflect.DeepEqual(back, rows) {
		t.Errorf("round trip changed rows: %v, want %v", back, rows)
	}
}

func TestEmptyInput(t *testing.T) {
	if got := ToDomain(nil); len(got) != 0 {
		t.Errorf("ToDomain(nil) = %v", got)
	}
	if got := ToStorage([]map[string]any{}); len(got) != 0 {
		t.Errorf("ToStorage(empty) = %v", got)
	}
}
