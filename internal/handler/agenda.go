package handler

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/database"
	"github.com/CodeIvet/patanaa/internal/filestructure"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/mapper"
	"github.com/CodeIvet/patanaa/internal/model"
)

// AgendaHandler serves the agenda item lifecycle.
type AgendaHandler struct {
	db         *gorm.DB
	reconciler *filestructure.Reconciler
	drive      *graph.DriveClient
	calendar   *graph.CalendarClient
}

func NewAgendaHandler(db *gorm.DB, reconciler *filestructure.Reconciler, drive *graph.DriveClient, calendar *graph.CalendarClient) *AgendaHandler {
	return &AgendaHandler{db: db, reconciler: reconciler, drive: drive, calendar: calendar}
}

// AgendaItemInput is an item row as the client sends it while saving an
// agenda.
type AgendaItemInput struct {
	model.AgendaItem
	IsNew bool `json:"isNew"`
}

// UpdateAgendaRequest is the full agenda save: the items that belong to the
// meeting, in order, and the items dragged out of it.
type UpdateAgendaRequest struct {
	BoardMeetingID        int64             `json:"boardMeetingId"`
	AgendaItems           []AgendaItemInput `json:"agendaItems"`
	UnassignedAgendaItems []AgendaItemInput `json:"unassignedAgendaItems"`
}

// GetAgendaItems lists the items of a meeting, or the unassigned pool when
// no meeting is given.
func (h *AgendaHandler) GetAgendaItems(c *fiber.Ctx) error {
	meetingParam := c.Query("boardmeeting")

	var rows []map[string]any
	var err error
	if meetingParam != "" {
		meetingID, convErr := strconv.ParseInt(meetingParam, 10, 64)
		if convErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid boardmeeting id",
			})
		}
		rows, err = database.ExecuteQuery(h.db,
			`SELECT * FROM "AgendaItems" WHERE "BoardMeeting" = @meeting_id ORDER BY "OrderIndex" ASC`,
			map[string]any{"meeting_id": meetingID})
	} else {
		rows, err = database.ExecuteQuery(h.db,
			`SELECT * FROM "AgendaItems" WHERE "BoardMeeting" IS NULL ORDER BY "Title" ASC`, nil)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(mapper.ToDomain(rows))
}

// UpdateAgenda saves the full agenda of a meeting: upserts the assigned
// items with a dense order index, unassigns the removed ones (cancelling
// their invites best-effort), reconciles the folder tree and persists the
// folder ids.
func (h *AgendaHandler) UpdateAgenda(c *fiber.Ctx) error {
	var req UpdateAgendaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.BoardMeetingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}

	// Positions are re-derived from the submitted order, never trusted from
	// the client.
	for i := range req.AgendaItems {
		input := &req.AgendaItems[i]
		if err := model.ValidateTitle(input.Title); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		input.OrderIndex = i
		input.BoardMeeting = &req.BoardMeetingID

		if input.IsNew {
			item := input.AgendaItem
			item.ID = 0
			if err := h.db.Create(&item).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			input.ID = item.ID
			continue
		}

		updates := map[string]any{
			"DurationInMinutes":      input.DurationInMinutes,
			"Title":                  input.Title,
			"AdditionalParticipants": input.AdditionalParticipants,
			"FileLocationId":         input.FileLocationID,
			"ProtocolLocationId":     input.ProtocolLocationID,
			"OrderIndex":             input.OrderIndex,
			"IsMisc":                 input.IsMisc,
			"NeedsDecision":          input.NeedsDecision,
			"BoardMeeting":           req.BoardMeetingID,
			"Remarks":                input.Remarks,
		}
		if err := h.db.Model(&model.AgendaItem{}).Where(`"ID" = ?`, input.ID).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	for _, input := range req.UnassignedAgendaItems {
		if input.EventID != nil && *input.EventID != "" {
			if err := h.calendar.CancelEvent(c.Context(), *input.EventID); err != nil && !graph.IsNotFound(err) {
				log.Printf("cancelling event of unassigned agenda item %d failed: %v", input.ID, err)
			}
		}
		if err := h.db.Model(&model.AgendaItem{}).
			Where(`"ID" = ?`, input.ID).
			Updates(map[string]any{"BoardMeeting": nil, "EventId": nil}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	structure, err := h.reconciler.EnsureFileStructure(c.Context(), req.BoardMeetingID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := persistFolderIDs(h.db, req.BoardMeetingID, structure); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "All agenda items assigned and updated successfully."})
}

// UpdateAgendaItem stores the event id of a single item.
func (h *AgendaHandler) UpdateAgendaItem(c *fiber.Ctx) error {
	var req struct {
		AgendaItemID int64  `json:"agendaItemId"`
		EventID      string `json:"eventId"`
	}
	if err := c.BodyParser(&req); err != nil || req.AgendaItemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "agenda item id is missing",
		})
	}

	result := h.db.Model(&model.AgendaItem{}).
		Where(`"ID" = ?`, req.AgendaItemID).
		Update("EventId", req.EventID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": result.Error.Error(),
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "agenda item not found",
		})
	}

	return c.JSON(fiber.Map{"message": "agenda item updated"})
}

// DeleteAgendaItem cancels the item's event and deletes its folder, both
// best-effort, then removes the row.
func (h *AgendaHandler) DeleteAgendaItem(c *fiber.Ctx) error {
	var req struct {
		ItemID         int64  `json:"itemId"`
		EventID        string `json:"eventId"`
		FileLocationID string `json:"fileLocationId"`
	}
	if err := c.BodyParser(&req); err != nil || req.ItemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "agenda item id is missing",
		})
	}

	if req.EventID != "" {
		if err := h.calendar.CancelEvent(c.Context(), req.EventID); err != nil && !graph.IsNotFound(err) {
			log.Printf("cancelling event of agenda item %d failed: %v", req.ItemID, err)
		}
	}
	if req.FileLocationID != "" {
		if err := h.drive.Delete(c.Context(), req.FileLocationID); err != nil && !graph.IsNotFound(err) {
			log.Printf("deleting folder of agenda item %d failed: %v", req.ItemID, err)
		}
	}

	if err := h.db.Delete(&model.AgendaItem{}, `"ID" = ?`, req.ItemID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "agenda item deleted"})
}
