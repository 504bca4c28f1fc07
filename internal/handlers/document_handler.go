package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/models"
	"github.com/talentsift/resume-scorer/internal/services"
)

// DocumentHandler validates uploaded documents without scoring them, so
// clients can probe files before committing to a batch.
type DocumentHandler struct {
	tempFiles services.TempFileService
	pdf       services.PDFExtractorService
	logger    *zap.Logger
}

func NewDocumentHandler(
	tempFiles services.TempFileService,
	pdf services.PDFExtractorService,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		tempFiles: tempFiles,
		pdf:       pdf,
		logger:    logger,
	}
}

func (h *DocumentHandler) HandleCreateJobDescription(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a file is required",
		})
	}

	doc := documents.NewJobDescriptionFromUpload(file, h.tempFiles, h.pdf)
	if _, err := doc.Load(c.UserContext()); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.logger.Debug("job description validated", zap.String("filename", file.Filename))

	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{
		Message: "Job description created",
	})
}

func (h *DocumentHandler) HandleCreateResume(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a file is required",
		})
	}

	doc := documents.NewResumeFromUpload(file, h.tempFiles, h.pdf)
	if _, err := doc.Load(c.UserContext()); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.logger.Debug("resume validated", zap.String("filename", file.Filename))

	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{
		Message: "Resume created",
	})
}
