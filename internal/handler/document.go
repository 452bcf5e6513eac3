package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/config"
	"github.com/CodeIvet/patanaa/internal/filestructure"
	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
	"github.com/CodeIvet/patanaa/internal/template"
)

// DocumentHandler renders the DOCX templates into agenda PDFs and protocol
// drafts inside the meeting folder.
type DocumentHandler struct {
	db            *gorm.DB
	meetingsDrive *graph.DriveClient
	assetsDrive   *graph.DriveClient
	reconciler    *filestructure.Reconciler
	resolver      template.NameResolver
	templates     config.TemplateConfig
}

func NewDocumentHandler(db *gorm.DB, meetingsDrive, assetsDrive *graph.DriveClient, reconciler *filestructure.Reconciler, resolver template.NameResolver, templates config.TemplateConfig) *DocumentHandler {
	return &DocumentHandler{
		db:            db,
		meetingsDrive: meetingsDrive,
		assetsDrive:   assetsDrive,
		reconciler:    reconciler,
		resolver:      resolver,
		templates:     templates,
	}
}

type documentRequest struct {
	BoardMeeting int64 `json:"boardMeeting"`
}

// loadMeetingContext reloads the meeting and its ordered items and makes sure
// the folder tree exists, since the rendered files land inside it.
func (h *DocumentHandler) loadMeetingContext(c *fiber.Ctx, meetingID int64) (*model.BoardMeeting, []model.AgendaItem, error) {
	structure, err := h.reconciler.EnsureFileStructure(c.Context(), meetingID)
	if err != nil {
		return nil, nil, fmt.Errorf("ensure file structure: %w", err)
	}
	if err := persistFolderIDs(h.db, meetingID, structure); err != nil {
		return nil, nil, fmt.Errorf("persist folder ids: %w", err)
	}

	var meeting model.BoardMeeting
	if err := h.db.First(&meeting, `"ID" = ?`, meetingID).Error; err != nil {
		return nil, nil, fmt.Errorf("load board meeting %d: %w", meetingID, err)
	}

	var items []model.AgendaItem
	if err := h.db.Where(`"BoardMeeting" = ?`, meetingID).
		Order(`"OrderIndex" ASC`).
		Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("load agenda items: %w", err)
	}
	model.ApplyStartTimes(meeting.StartTime, items)

	return &meeting, items, nil
}

// CreateAgendaPdf renders the agenda template twice, with and without the
// remarks column, and places both PDFs in the meeting folder. The temporary
// DOCX only exists for the server-side PDF conversion and is removed again.
func (h *DocumentHandler) CreateAgendaPdf(c *fiber.Ctx) error {
	var req documentRequest
	if err := c.BodyParser(&req); err != nil || req.BoardMeeting == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}

	meeting, items, err := h.loadMeetingContext(c, req.BoardMeeting)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	folderID := ""
	if meeting.FileLocationID != nil {
		folderID = *meeting.FileLocationID
	}

	templateDocx, err := h.assetsDrive.FetchContent(c.Context(), h.templates.AgendaFileIDEn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("fetch agenda template: %v", err),
		})
	}

	safeTitle := filestructure.SafeString(meeting.Title)
	for _, includeRemarks := range []bool{true, false} {
		data, err := template.BuildAgendaData(c.Context(), h.resolver, meeting, items, "EN", includeRemarks)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		rendered, err := template.RenderDocx(templateDocx, data)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("render agenda template: %v", err),
			})
		}

		tempID, err := h.meetingsDrive.UploadContent(c.Context(), folderID, "Agenda_temp_EN.docx", rendered)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("upload rendered agenda: %v", err),
			})
		}
		pdf, err := h.meetingsDrive.ConvertToPDF(c.Context(), tempID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("convert agenda to pdf: %v", err),
			})
		}

		pdfName := fmt.Sprintf("Agenda-%s.pdf", safeTitle)
		if !includeRemarks {
			pdfName = fmt.Sprintf("Agenda-%s clean.pdf", safeTitle)
		}
		if _, err := h.meetingsDrive.UploadContent(c.Context(), folderID, pdfName, pdf); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("upload agenda pdf: %v", err),
			})
		}
		if err := h.meetingsDrive.Delete(c.Context(), tempID); err != nil && !graph.IsNotFound(err) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("remove temporary agenda docx: %v", err),
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Agenda PDFs created successfully"})
}

// ProcessProtocolTemplate renders the German and English protocol drafts
// into the meeting folder, overwriting earlier drafts.
func (h *DocumentHandler) ProcessProtocolTemplate(c *fiber.Ctx) error {
	var req documentRequest
	if err := c.BodyParser(&req); err != nil || req.BoardMeeting == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board meeting id is missing",
		})
	}

	meeting, items, err := h.loadMeetingContext(c, req.BoardMeeting)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	folderID := ""
	if meeting.FileLocationID != nil {
		folderID = *meeting.FileLocationID
	}

	variants := []struct {
		lang       string
		templateID string
	}{
		{"DE", h.templates.ProtocolFileIDDe},
		{"EN", h.templates.ProtocolFileIDEn},
	}
	for _, variant := range variants {
		data, err := template.BuildProtocolData(c.Context(), h.resolver, meeting, items, variant.lang)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		templateDocx, err := h.assetsDrive.FetchContent(c.Context(), variant.templateID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("fetch protocol template %s: %v", variant.lang, err),
			})
		}
		rendered, err := template.RenderDocx(templateDocx, data)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("render protocol template %s: %v", variant.lang, err),
			})
		}
		name := fmt.Sprintf("Protocol DRAFT %s.docx", variant.lang)
		if _, err := h.meetingsDrive.UploadContent(c.Context(), folderID, name, rendered); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("upload protocol draft %s: %v", variant.lang, err),
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Protocol drafts created successfully"})
}
