package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/services"
)

func newDocumentApp() *fiber.App {
	app := fiber.New()
	handler := NewDocumentHandler(
		services.NewTempFileService(0, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	app.Post("/api/v1/job-descriptions", handler.HandleCreateJobDescription)
	app.Post("/api/v1/resumes", handler.HandleCreateResume)
	return app
}

func TestHandleCreateJobDescription(t *testing.T) {
	app := newDocumentApp()

	req := multipartRequest(t, "/api/v1/job-descriptions", nil, []filePart{
		{"file", "jd.txt", "hiring a go engineer"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Job description created", body["message"])
}

func TestHandleCreateResume(t *testing.T) {
	app := newDocumentApp()

	req := multipartRequest(t, "/api/v1/resumes", nil, []filePart{
		{"file", "resume.md", "# Jane Doe\n\nGo developer."},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Resume created", body["message"])
}

func TestHandleCreateJobDescriptionRequiresFile(t *testing.T) {
	app := newDocumentApp()

	req := multipartRequest(t, "/api/v1/job-descriptions", map[string]string{"other": "field"}, nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "a file is required", decodeError(t, resp))
}

func TestHandleCreateResumeEmptyFile(t *testing.T) {
	app := newDocumentApp()

	req := multipartRequest(t, "/api/v1/resumes", nil, []filePart{
		{"file", "resume.txt", "   \n\t"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "empty")
}

func TestHandleCreateResumeUnsupportedExtension(t *testing.T) {
	app := newDocumentApp()

	req := multipartRequest(t, "/api/v1/resumes", nil, []filePart{
		{"file", "resume.exe", "binary junk"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "unsupported")
}
