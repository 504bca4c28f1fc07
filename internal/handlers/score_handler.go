package handlers

import (
	"errors"
	"io/fs"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/hashutil"
	"github.com/talentsift/resume-scorer/internal/models"
	"github.com/talentsift/resume-scorer/internal/services"
)

type ScoreHandler struct {
	processor services.ResumeProcessorService
	tempFiles services.TempFileService
	pdf       services.PDFExtractorService
	generator services.JobDescriptionService
	logger    *zap.Logger
}

func NewScoreHandler(
	processor services.ResumeProcessorService,
	tempFiles services.TempFileService,
	pdf services.PDFExtractorService,
	generator services.JobDescriptionService,
	logger *zap.Logger,
) *ScoreHandler {
	return &ScoreHandler{
		processor: processor,
		tempFiles: tempFiles,
		pdf:       pdf,
		generator: generator,
		logger:    logger,
	}
}

// HandleScoreResumes scores every uploaded resume against one job
// description. The job description arrives either as a file or as a bare
// job_title to synthesize. Items come back in upload order; a failed resume
// carries its error in place of scores.
func (h *ScoreHandler) HandleScoreResumes(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	resumeFiles := form.File["resumes"]
	if len(resumeFiles) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "at least one resume is required",
		})
	}

	jobDescription, err := h.jobDescriptionFromRequest(c, form)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	opts := services.ScoreOptions{
		Skill:   c.FormValue("skill"),
		Explain: explainRequested(c),
	}

	resumes := make([]*documents.Document, len(resumeFiles))
	for i, file := range resumeFiles {
		resumes[i] = documents.NewResumeFromUpload(file, h.tempFiles, h.pdf)
	}

	outcomes, err := h.processor.Execute(c.UserContext(), jobDescription, resumes, opts)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	items := make([]models.ScoreItem, len(outcomes))
	for i, outcome := range outcomes {
		name := resumeFiles[i].Filename

		if !outcome.Ok() {
			items[i] = models.ScoreItem{Name: name, Error: outcome.Err.Error()}
			continue
		}

		item := models.ScoreItem{
			ID:       outcome.Score.ID,
			Name:     name,
			AIScore:  &outcome.Score.AIScore,
			ATSScore: &outcome.Score.ATSScore,
		}
		// Identify scored resumes by their content, not by the placeholder.
		if content, cerr := resumes[i].Content(); cerr == nil {
			item.ID = hashutil.HashContent([]byte(content))
		}
		items[i] = item
	}

	h.logger.Info("batch scored",
		zap.Int("resumes", len(items)),
		zap.Bool("explain", opts.Explain),
	)

	return c.JSON(items)
}

func (h *ScoreHandler) jobDescriptionFromRequest(c *fiber.Ctx, form *multipart.Form) (*documents.Document, error) {
	if files := form.File["job_description"]; len(files) > 0 {
		return documents.NewJobDescriptionFromUpload(files[0], h.tempFiles, h.pdf), nil
	}

	if title := c.FormValue("job_title"); strings.TrimSpace(title) != "" {
		return documents.NewJobDescriptionFromTitle(title, h.generator), nil
	}

	return nil, errors.New("a job_description file or a job_title value is required")
}

// explainRequested reads the explain form value, defaulting to true.
func explainRequested(c *fiber.Ctx) bool {
	if raw := c.FormValue("explain"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, documents.ErrUnsupportedType),
		errors.Is(err, documents.ErrEmptyContent),
		errors.Is(err, documents.ErrNoSource),
		errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrUpstream):
		return fiber.StatusBadGateway
	}

	var parseErr *services.ScoreParseError
	if errors.As(err, &parseErr) {
		return fiber.StatusBadGateway
	}

	return fiber.StatusInternalServerError
}
