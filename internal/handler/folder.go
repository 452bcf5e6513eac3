package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodeIvet/patanaa/internal/graph"
)

// FolderHandler resolves drive items to browser links.
type FolderHandler struct {
	drives map[string]*graph.DriveClient
}

// NewFolderHandler maps the public drive names to their clients.
func NewFolderHandler(meetings, assets *graph.DriveClient) *FolderHandler {
	return &FolderHandler{drives: map[string]*graph.DriveClient{
		"Meetings": meetings,
		"Assets":   assets,
	}}
}

// GetFolderWebUrl returns the web URL of a drive item as plain text.
func (h *FolderHandler) GetFolderWebUrl(c *fiber.Ctx) error {
	driveName := c.Query("driveName")
	itemID := c.Query("fileLocationId")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "fileLocationId is missing",
		})
	}
	drive, ok := h.drives[driveName]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown driveName",
		})
	}

	webURL, err := drive.GetLink(c.Context(), itemID)
	if err != nil {
		if graph.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendString(webURL)
}
