package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/hashutil"
	"github.com/talentsift/resume-scorer/internal/models"
	"github.com/talentsift/resume-scorer/internal/services"
)

// stubProcessor loads the documents like the real processor and then returns
// scripted outcomes: one fresh ok outcome per resume unless outcomes or err
// are set.
type stubProcessor struct {
	outcomes []models.ResumeScoreOutcome
	err      error

	gotOpts    services.ScoreOptions
	gotResumes int
	gotJobDesc *documents.Document
}

func (s *stubProcessor) Execute(ctx context.Context, jobDescription *documents.Document, resumes []*documents.Document, opts services.ScoreOptions) ([]models.ResumeScoreOutcome, error) {
	s.gotOpts = opts
	s.gotResumes = len(resumes)
	s.gotJobDesc = jobDescription

	if _, err := jobDescription.Load(ctx); err != nil {
		return nil, fmt.Errorf("load job description: %w", err)
	}
	for _, resume := range resumes {
		resume.Load(ctx) //nolint:errcheck
	}

	if s.err != nil {
		return nil, s.err
	}
	if s.outcomes != nil {
		return s.outcomes, nil
	}

	outcomes := make([]models.ResumeScoreOutcome, len(resumes))
	for i := range outcomes {
		outcomes[i] = models.ResumeScoreOutcome{
			Score: models.NewResumeScoreConsolidated(models.NewScore(80), models.NewScore(60)),
		}
	}
	return outcomes, nil
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) SynthesizeJobDescription(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func newScoreApp(processor services.ResumeProcessorService, generator services.JobDescriptionService) *fiber.App {
	app := fiber.New()
	handler := NewScoreHandler(
		processor,
		services.NewTempFileService(0, zap.NewNop()),
		nil,
		generator,
		zap.NewNop(),
	)
	app.Post("/api/v1/resumes/score", handler.HandleScoreResumes)
	return app
}

type filePart struct {
	field   string
	name    string
	content string
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files []filePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeItems(t *testing.T, resp *http.Response) []models.ScoreItem {
	t.Helper()
	var items []models.ScoreItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	return items
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestHandleScoreResumesOrderAndIdentity(t *testing.T) {
	processor := &stubProcessor{}
	app := newScoreApp(processor, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"job_description", "jd.txt", "hiring a go engineer"},
		{"resumes", "alice.txt", "alice golang resume"},
		{"resumes", "bob.txt", "bob java resume"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeItems(t, resp)
	require.Len(t, items, 2)

	assert.Equal(t, "alice.txt", items[0].Name)
	assert.Equal(t, "bob.txt", items[1].Name)
	assert.Equal(t, hashutil.HashContent([]byte("alice golang resume")), items[0].ID)
	assert.Equal(t, hashutil.HashContent([]byte("bob java resume")), items[1].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	require.NotNil(t, items[0].AIScore)
	assert.Equal(t, 80.0, items[0].AIScore.Value)
	require.NotNil(t, items[0].ATSScore)
	assert.Equal(t, 60.0, items[0].ATSScore.Value)

	assert.Equal(t, 2, processor.gotResumes)
}

func TestHandleScoreResumesPerItemError(t *testing.T) {
	processor := &stubProcessor{outcomes: []models.ResumeScoreOutcome{
		{Score: models.NewResumeScoreConsolidated(models.NewScore(80), models.NewScore(60))},
		{Err: errors.New("load resume: document content is empty")},
	}}
	app := newScoreApp(processor, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"job_description", "jd.txt", "hiring a go engineer"},
		{"resumes", "alice.txt", "alice golang resume"},
		{"resumes", "empty.txt", "   "},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeItems(t, resp)
	require.Len(t, items, 2)

	assert.True(t, items[0].Error == "")
	require.NotNil(t, items[0].AIScore)

	assert.Equal(t, "empty.txt", items[1].Name)
	assert.Contains(t, items[1].Error, "empty")
	assert.Nil(t, items[1].AIScore)
	assert.Nil(t, items[1].ATSScore)
	assert.Empty(t, items[1].ID)
}

func TestHandleScoreResumesRequiresResumes(t *testing.T) {
	app := newScoreApp(&stubProcessor{}, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"job_description", "jd.txt", "hiring a go engineer"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "at least one resume is required", decodeError(t, resp))
}

func TestHandleScoreResumesRequiresJobDescription(t *testing.T) {
	app := newScoreApp(&stubProcessor{}, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"resumes", "alice.txt", "alice golang resume"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "a job_description file or a job_title value is required", decodeError(t, resp))
}

func TestHandleScoreResumesGeneratesJobDescriptionFromTitle(t *testing.T) {
	processor := &stubProcessor{}
	generator := &stubGenerator{text: "Generated description for Backend Engineer"}
	app := newScoreApp(processor, generator)

	req := multipartRequest(t, "/api/v1/resumes/score",
		map[string]string{"job_title": "Backend Engineer"},
		[]filePart{{"resumes", "alice.txt", "alice golang resume"}},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, processor.gotJobDesc)
	content, err := processor.gotJobDesc.Content()
	require.NoError(t, err)
	assert.Equal(t, "Generated description for Backend Engineer", content)
}

func TestHandleScoreResumesExplainFlag(t *testing.T) {
	cases := []struct {
		name    string
		explain string
		want    bool
	}{
		{"default on", "", true},
		{"explicit false", "false", false},
		{"explicit true", "true", true},
		{"zero", "0", false},
		{"garbage falls back to default", "maybe", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			processor := &stubProcessor{}
			app := newScoreApp(processor, nil)

			fields := map[string]string{"skill": "Go"}
			if tc.explain != "" {
				fields["explain"] = tc.explain
			}

			req := multipartRequest(t, "/api/v1/resumes/score", fields, []filePart{
				{"job_description", "jd.txt", "hiring a go engineer"},
				{"resumes", "alice.txt", "alice golang resume"},
			})

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			assert.Equal(t, tc.want, processor.gotOpts.Explain)
			assert.Equal(t, "Go", processor.gotOpts.Skill)
		})
	}
}

func TestHandleScoreResumesEmptyJobDescriptionFile(t *testing.T) {
	app := newScoreApp(&stubProcessor{}, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"job_description", "jd.txt", "   \n"},
		{"resumes", "alice.txt", "alice golang resume"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "empty")
}

func TestHandleScoreResumesUpstreamFailure(t *testing.T) {
	processor := &stubProcessor{err: fmt.Errorf("ai score: %w", services.ErrUpstream)}
	app := newScoreApp(processor, nil)

	req := multipartRequest(t, "/api/v1/resumes/score", nil, []filePart{
		{"job_description", "jd.txt", "hiring a go engineer"},
		{"resumes", "alice.txt", "alice golang resume"},
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported type", fmt.Errorf("load resume: %w", documents.ErrUnsupportedType), fiber.StatusBadRequest},
		{"empty content", fmt.Errorf("resume: %w", documents.ErrEmptyContent), fiber.StatusBadRequest},
		{"no source", documents.ErrNoSource, fiber.StatusBadRequest},
		{"file too large", services.ErrFileTooLarge, fiber.StatusBadRequest},
		{"missing file", fmt.Errorf("pdf file: %w", fs.ErrNotExist), fiber.StatusNotFound},
		{"upstream", fmt.Errorf("ai score: %w", services.ErrUpstream), fiber.StatusBadGateway},
		{"parse failure", fmt.Errorf("ai score: %w", &services.ScoreParseError{Raw: "nope"}), fiber.StatusBadGateway},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusForError(tc.err))
		})
	}
}
