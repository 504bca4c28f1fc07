package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/models"
)

// ResumeProcessorService fans one job description out against many resumes.
type ResumeProcessorService interface {
	Execute(ctx context.Context, jobDescription *documents.Document, resumes []*documents.Document, opts ScoreOptions) ([]models.ResumeScoreOutcome, error)
}

type resumeProcessorService struct {
	scorer ResumeScorerService
	logger *zap.Logger
}

func NewResumeProcessorService(scorer ResumeScorerService, log *zap.Logger) ResumeProcessorService {
	return &resumeProcessorService{
		scorer: scorer,
		logger: log,
	}
}

// Execute scores every resume concurrently against the job description, one
// goroutine per resume. The job description failing to load fails the whole
// batch; a single resume failing only marks its own slot. Outcome i always
// corresponds to resume i.
func (p *resumeProcessorService) Execute(ctx context.Context, jobDescription *documents.Document, resumes []*documents.Document, opts ScoreOptions) ([]models.ResumeScoreOutcome, error) {
	if _, err := jobDescription.Load(ctx); err != nil {
		return nil, fmt.Errorf("load job description: %w", err)
	}

	outcomes := make([]models.ResumeScoreOutcome, len(resumes))

	var wg sync.WaitGroup
	for i, resume := range resumes {
		wg.Add(1)
		go func(i int, resume *documents.Document) {
			defer wg.Done()

			score, err := p.scorer.ScoreResume(ctx, resume, jobDescription, opts)
			if err != nil {
				p.logger.Warn("scoring resume failed",
					zap.Int("position", i),
					zap.Error(err),
				)
				outcomes[i] = models.ResumeScoreOutcome{Err: err}
				return
			}
			outcomes[i] = models.ResumeScoreOutcome{Score: score}
		}(i, resume)
	}
	wg.Wait()

	p.logger.Debug("batch scoring finished", zap.Int("resumes", len(resumes)))

	return outcomes, nil
}
