package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/database"
	"github.com/CodeIvet/patanaa/internal/filestructure"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/mapper"
	"github.com/CodeIvet/patanaa/internal/model"
)

// BoardMeetingHandler serves the board meeting lifecycle.
type BoardMeetingHandler struct {
	db         *gorm.DB
	reconciler *filestructure.Reconciler
	drive      *graph.DriveClient
	calendar   *graph.CalendarClient
}

func NewBoardMeetingHandler(db *gorm.DB, reconciler *filestructure.Reconciler, drive *graph.DriveClient, calendar *graph.CalendarClient) *BoardMeetingHandler {
	return &BoardMeetingHandler{db: db, reconciler: reconciler, drive: drive, calendar: calendar}
}

// UpdateBoardMeetingRequest wraps the meeting row with the flag controlling
// folder reconciliation.
type UpdateBoardMeetingRequest struct {
	BoardMeeting        model.BoardMeeting `json:"boardmeeting"`
	EnsureFileStructure bool               `json:"ensureFileStructure"`
}

// GetBoardMeetings lists all meetings ordered by start time.
func (h *BoardMeetingHandler) GetBoardMeetings(c *fiber.Ctx) error {
	rows, err := database.ExecuteQuery(h.db, `SELECT * FROM "BoardMeetings" ORDER BY "StartTime" ASC`, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(mapper.ToDomain(rows))
}

// CreateBoardMeeting inserts a new meeting and returns the stored row.
func (h *BoardMeetingHandler) CreateBoardMeeting(c *fiber.Ctx) error {
	var meeting model.BoardMeeting
	if err := c.BodyParser(&meeting); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := model.ValidateTitle(meeting.Title); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	meeting.ID = 0
	if err := h.db.Create(&meeting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(meeting)
}

// UpdateBoardMeeting overwrites every mutable field of a meeting and, when
// requested, reconciles the folder tree and persists the returned folder ids.
func (h *BoardMeetingHandler) UpdateBoardMeeting(c *fiber.Ctx) error {
	var req UpdateBoardMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	meeting := req.BoardMeeting
	if meeting.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}
	if err := model.ValidateTitle(meeting.Title); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	updates := map[string]any{
		"StartTime":         meeting.StartTime,
		"Title":             meeting.Title,
		"FixedParticipants": meeting.FixedParticipants,
		"Remarks":           meeting.Remarks,
		"Location":          meeting.Location,
		"EventId":           meeting.EventID,
		"TimeZone":          meeting.TimeZone,
		"MeetingLink":       meeting.MeetingLink,
		"Room":              meeting.Room,
	}
	result := h.db.Model(&model.BoardMeeting{}).Where(`"ID" = ?`, meeting.ID).Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": result.Error.Error(),
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "board meeting not found",
		})
	}

	if req.EnsureFileStructure {
		structure, err := h.reconciler.EnsureFileStructure(c.Context(), meeting.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if err := persistFolderIDs(h.db, meeting.ID, structure); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	var updated model.BoardMeeting
	if err := h.db.First(&updated, `"ID" = ?`, meeting.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(updated)
}

// DeleteBoardMeeting removes a meeting. Agenda items survive: they are
// unassigned and their folders are relocated to the unassigned pool before
// the meeting folder and event go away.
func (h *BoardMeetingHandler) DeleteBoardMeeting(c *fiber.Ctx) error {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}

	var meeting model.BoardMeeting
	if err := h.db.First(&meeting, `"ID" = ?`, req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "board meeting not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var items []model.AgendaItem
	if err := h.db.Where(`"BoardMeeting" = ?`, req.ID).Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Unassign before touching remote state so a partial failure leaves the
	// items recoverable from the unassigned pool.
	if err := h.db.Model(&model.AgendaItem{}).
		Where(`"BoardMeeting" = ?`, req.ID).
		Updates(map[string]any{"BoardMeeting": nil, "EventId": nil}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	for _, item := range items {
		if item.EventID != nil && *item.EventID != "" {
			if err := h.calendar.CancelEvent(c.Context(), *item.EventID); err != nil && !graph.IsNotFound(err) {
				log.Printf("cancelling event of agenda item %d failed: %v", item.ID, err)
			}
		}
		if item.FileLocationID != nil && *item.FileLocationID != "" {
			err := h.drive.RenameOrMove(c.Context(), *item.FileLocationID, filestructure.SafeString(item.Title), h.reconciler.UnassignedFolderID())
			if err != nil && !graph.IsNotFound(err) {
				log.Printf("relocating folder of agenda item %d failed: %v", item.ID, err)
			}
		}
	}

	if meeting.EventID != nil && *meeting.EventID != "" {
		if err := h.calendar.CancelEvent(c.Context(), *meeting.EventID); err != nil && !graph.IsNotFound(err) {
			log.Printf("cancelling meeting event failed: %v", err)
		}
	}
	if meeting.FileLocationID != nil && *meeting.FileLocationID != "" {
		if err := h.drive.Delete(c.Context(), *meeting.FileLocationID); err != nil && !graph.IsNotFound(err) {
			log.Printf("deleting meeting folder failed: %v", err)
		}
	}

	if err := h.db.Delete(&model.BoardMeeting{}, `"ID" = ?`, req.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Board meeting deleted successfully"})
}

// persistFolderIDs writes reconciliation output back to the rows.
func persistFolderIDs(db *gorm.DB, meetingID int64, structure *filestructure.Result) error {
	if err := db.Model(&model.BoardMeeting{}).
		Where(`"ID" = ?`, meetingID).
		Update("FileLocationId", structure.MeetingFolderID).Error; err != nil {
		return err
	}
	for _, item := range structure.Items {
		if err := db.Model(&model.AgendaItem{}).
			Where(`"ID" = ?`, item.ID).
			Update("FileLocationId", item.FolderID).Error; err != nil {
			return err
		}
	}
	return nil
}
