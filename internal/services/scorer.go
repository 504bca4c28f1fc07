package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/logger"
	"github.com/talentsift/resume-scorer/internal/models"
)

// ScoreOptions controls a single scoring run.
type ScoreOptions struct {
	// Skill, when set, asks the judge to weigh this skill heavily.
	Skill string
	// Explain requests a written justification alongside each sub-score.
	Explain bool
}

type ResumeScorerService interface {
	ScoreResume(ctx context.Context, resume, jobDescription *documents.Document, opts ScoreOptions) (*models.ResumeScoreConsolidated, error)
}

type resumeScorerService struct {
	llm     LLMGateway
	index   SimilarityIndex
	prompts *PromptBuilder
	logger  *zap.Logger
}

// NewResumeScorerService builds the dual-score engine. index may be nil, in
// which case the ATS score is computed with the in-process cosine.
func NewResumeScorerService(llm LLMGateway, index SimilarityIndex, prompts *PromptBuilder, log *zap.Logger) ResumeScorerService {
	return &resumeScorerService{
		llm:     llm,
		index:   index,
		prompts: prompts,
		logger:  log,
	}
}

// scoreExplainedSchema is the contract for the structured extraction of an
// explained score.
var scoreExplainedSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"value": {
			Type:        genai.TypeNumber,
			Description: "The numeric score between 1 and 100.",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "The reason points were deducted.",
		},
	},
	Required: []string{"value", "explanation"},
}

// ScoreResume loads both documents and computes the AI judgment score and
// the ATS similarity score concurrently. A failure on either side cancels
// the other and fails the pair.
func (s *resumeScorerService) ScoreResume(ctx context.Context, resume, jobDescription *documents.Document, opts ScoreOptions) (*models.ResumeScoreConsolidated, error) {
	loadedResume, err := resume.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resume: %w", err)
	}

	loadedJob, err := jobDescription.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load job description: %w", err)
	}

	resumeText := loadedResume.Content()
	jobDescText := loadedJob.Content()

	var aiScore, atsScore models.Score

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := s.generateAIScore(gctx, resumeText, jobDescText, opts)
		if err != nil {
			return fmt.Errorf("ai score: %w", err)
		}
		aiScore = score
		return nil
	})
	g.Go(func() error {
		score, err := s.generateATSScore(gctx, resumeText, jobDescText, opts)
		if err != nil {
			return fmt.Errorf("ats score: %w", err)
		}
		atsScore = score
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := models.NewResumeScoreConsolidated(aiScore, atsScore)

	s.logger.Debug("resume scored",
		zap.Float64("ai_score", aiScore.Value),
		zap.Float64("ats_score", atsScore.Value),
		zap.Bool("explained", opts.Explain),
	)

	return result, nil
}

// generateAIScore asks the model to judge the match and reads its reply as a
// score: free-text parsing by default, structured extraction when an
// explanation is requested.
func (s *resumeScorerService) generateAIScore(ctx context.Context, resumeText, jobDescText string, opts ScoreOptions) (models.Score, error) {
	prompt := s.prompts.BuildScoringPrompt(resumeText, jobDescText, opts.Skill, opts.Explain)
	messages := []Message{
		{Role: RoleSystem, Content: scoringSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}

	s.logger.Debug("requesting ai judgment",
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, 200)),
	)

	temperature := float32(0)
	response, err := s.llm.ChatComplete(ctx, messages, &temperature)
	if err != nil {
		return models.Score{}, err
	}

	if opts.Explain {
		return s.extractExplainedScore(ctx, response)
	}

	return parseScoreFromResponse(response)
}

// extractExplainedScore feeds the judge's reply back through structured
// extraction to separate the score from its justification.
func (s *resumeScorerService) extractExplainedScore(ctx context.Context, responseText string) (models.Score, error) {
	messages := []Message{
		{Role: RoleUser, Content: responseText},
	}

	var explained models.Score
	if err := s.llm.ExtractStructured(ctx, messages, scoreExplainedSchema, &explained); err != nil {
		return models.Score{}, err
	}

	explained.Explained = true
	return explained, nil
}

// generateATSScore embeds both documents concurrently and reports their
// cosine similarity as a percentage, rounded to two decimals.
func (s *resumeScorerService) generateATSScore(ctx context.Context, resumeText, jobDescText string, opts ScoreOptions) (models.Score, error) {
	var resumeVec, jobDescVec []float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := s.llm.Embed(gctx, resumeText)
		if err != nil {
			return fmt.Errorf("embed resume: %w", err)
		}
		resumeVec = vec
		return nil
	})
	g.Go(func() error {
		vec, err := s.llm.Embed(gctx, jobDescText)
		if err != nil {
			return fmt.Errorf("embed job description: %w", err)
		}
		jobDescVec = vec
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Score{}, err
	}

	var similarity float64
	var err error
	if s.index != nil {
		similarity, err = s.index.Similarity(ctx, resumeVec, jobDescVec)
	} else {
		similarity, err = CosineSimilarity(resumeVec, jobDescVec)
	}
	if err != nil {
		return models.Score{}, err
	}

	value := round2(similarity * 100)

	if opts.Explain {
		return models.NewExplainedScore(value, fmt.Sprintf("ATS score is %s", formatScore(value))), nil
	}
	return models.NewScore(value), nil
}

var scorePattern = regexp.MustCompile(`\d+(\.\d+)?`)

// parseScoreFromResponse reads the model's free-text reply as a number:
// first as a plain numeric literal, then by taking the first number-looking
// substring anywhere in the text.
func parseScoreFromResponse(response string) (models.Score, error) {
	trimmed := strings.TrimSpace(response)

	if value, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return models.NewScore(value), nil
	}

	if match := scorePattern.FindString(trimmed); match != "" {
		if value, err := strconv.ParseFloat(match, 64); err == nil {
			return models.NewScore(value), nil
		}
	}

	return models.Score{}, &ScoreParseError{Raw: response}
}

// formatScore renders a score the way it reads in explanations: no trailing
// zeros, no exponent.
func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
