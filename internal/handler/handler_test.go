package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/CodeIvet/patanaa/internal/config"
)

func TestGetDefaultListsFallBackToEmptySlices(t *testing.T) {
	h := NewUserMappingHandler(nil, nil, config.DefaultsConfig{
		Rooms: []string{"Boardroom", "Hamburg 1"},
	})

	app := fiber.New()
	app.Get("/rooms", h.GetDefaultRooms)
	app.Get("/groups", h.GetDefaultParticipantGroups)

	resp, err := app.Test(httptest.NewRequest("GET", "/rooms", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var rooms []string
	if err := json.Unmarshal(body, &rooms); err != nil {
		t.Fatalf("unmarshal rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0] != "Boardroom" {
		t.Errorf("rooms = %v", rooms)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/groups", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("groups body = %q, want empty JSON array", string(body))
	}
}

func TestGetFolderWebUrlValidatesInput(t *testing.T) {
	h := NewFolderHandler(nil, nil)

	app := fiber.New()
	app.Get("/getFolderWebUrl", h.GetFolderWebUrl)

	cases := []struct {
		name   string
		target string
	}{
		{"missing item id", "/getFolderWebUrl?driveName=Meetings"},
		{"unknown drive", "/getFolderWebUrl?driveName=Nope&fileLocationId=abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.target, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestBodyParsingRejectsGarbage(t *testing.T) {
	h := NewCalendarHandler(nil, nil, nil, config.CalendarConfig{})

	app := fiber.New()
	app.Post("/createUpdateBoardMeetingCalendarItem", h.CreateUpdateBoardMeetingCalendarItem)

	req := httptest.NewRequest("POST", "/createUpdateBoardMeetingCalendarItem", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
