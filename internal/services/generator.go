package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/logger"
)

// JobDescriptionService synthesizes job description text for callers that
// only have a job title.
type JobDescriptionService interface {
	SynthesizeJobDescription(ctx context.Context, jobTitle string) (string, error)
}

type jobDescriptionService struct {
	llm     LLMGateway
	prompts *PromptBuilder
	logger  *zap.Logger
}

func NewJobDescriptionService(llm LLMGateway, prompts *PromptBuilder, log *zap.Logger) JobDescriptionService {
	return &jobDescriptionService{
		llm:     llm,
		prompts: prompts,
		logger:  log,
	}
}

// SynthesizeJobDescription implements JobDescriptionService.
func (s *jobDescriptionService) SynthesizeJobDescription(ctx context.Context, jobTitle string) (string, error) {
	messages := s.prompts.BuildJobDescriptionMessages(jobTitle)

	text, err := s.llm.ChatComplete(ctx, messages, nil)
	if err != nil {
		return "", err
	}

	s.logger.Debug("job description generated",
		zap.String("job_title", jobTitle),
		zap.String("preview", logger.TruncateForLog(text, 200)),
	)

	return strings.TrimSpace(text), nil
}
