package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/config"
	"github.com/CodeIvet/patanaa/internal/database"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
)

// UserMappingHandler serves the UPN to display name overrides and the
// directory lookups behind the people pickers.
type UserMappingHandler struct {
	db       *gorm.DB
	graph    *graph.Client
	defaults config.DefaultsConfig
}

func NewUserMappingHandler(db *gorm.DB, graphClient *graph.Client, defaults config.DefaultsConfig) *UserMappingHandler {
	return &UserMappingHandler{db: db, graph: graphClient, defaults: defaults}
}

// UserMappingRow is a mapping as the client edits it. The id only exists for
// list rendering and is regenerated on every read.
type UserMappingRow struct {
	ID          string `json:"id"`
	Upn         string `json:"upn"`
	DisplayName string `json:"displayName"`
}

// GetUserMappings lists all overrides sorted by display name.
func (h *UserMappingHandler) GetUserMappings(c *fiber.Ctx) error {
	var mappings []model.UserMapping
	if err := h.db.Order(`"DisplayName" ASC`).Find(&mappings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rows := make([]UserMappingRow, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, UserMappingRow{
			ID:          uuid.NewString(),
			Upn:         m.Upn,
			DisplayName: m.DisplayName,
		})
	}
	return c.JSON(rows)
}

// UpdateUserMappings replaces the whole override table with the submitted
// set.
func (h *UserMappingHandler) UpdateUserMappings(c *fiber.Ctx) error {
	var rows []UserMappingRow
	if err := c.BodyParser(&rows); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if _, err := database.ExecuteQuery(h.db, `DELETE FROM "UserMappings"`, nil); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	inserts := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row.Upn == "" {
			continue
		}
		inserts = append(inserts, map[string]any{
			"Upn":         row.Upn,
			"DisplayName": row.DisplayName,
		})
	}
	if err := database.BulkInsert(h.db, "UserMappings", inserts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "User mappings updated successfully"})
}

// GetUserProfiles resolves UPNs to directory profiles. Unknown UPNs come
// back echoing the UPN so the client can still render something.
func (h *UserMappingHandler) GetUserProfiles(c *fiber.Ctx) error {
	var req struct {
		Upns []string `json:"upns"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	profiles, err := h.graph.GetUserProfiles(c.Context(), req.Upns)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(profiles)
}

// GetDefaultRooms serves the configured room pick list.
func (h *UserMappingHandler) GetDefaultRooms(c *fiber.Ctx) error {
	rooms := h.defaults.Rooms
	if rooms == nil {
		rooms = []string{}
	}
	return c.JSON(rooms)
}

// GetDefaultParticipantGroups serves the configured participant group pick
// list.
func (h *UserMappingHandler) GetDefaultParticipantGroups(c *fiber.Ctx) error {
	groups := h.defaults.ParticipantGroups
	if groups == nil {
		groups = []string{}
	}
	return c.JSON(groups)
}
