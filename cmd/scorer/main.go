package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/config"
	"github.com/talentsift/resume-scorer/internal/logger"
	"github.com/talentsift/resume-scorer/internal/services"
)

const app = "resume-scorer"

var (
	flagDebug bool
	flagJSON  bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-scorer scores resumes against a job description from the command line",
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "json format for logging")
}

func newLogger() *zap.Logger {
	zlog, err := logger.New(flagJSON, flagDebug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return zlog
}

// stack bundles the services the cli commands share.
type stack struct {
	cfg       *config.Config
	pdf       services.PDFExtractorService
	generator services.JobDescriptionService
	processor services.ResumeProcessorService
}

func newStack(ctx context.Context, zlog *zap.Logger) (*stack, error) {
	cfg := config.Load()

	gateway, err := services.NewGeminiGateway(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, zlog)
	if err != nil {
		return nil, err
	}

	prompts := services.NewPromptBuilder()

	var index services.SimilarityIndex
	if cfg.Qdrant.Enabled {
		qdrantIndex, err := services.NewQdrantIndex(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			zlog,
		)
		if err != nil {
			return nil, err
		}
		if err := qdrantIndex.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		index = qdrantIndex
	}

	scorer := services.NewResumeScorerService(gateway, index, prompts, zlog)

	return &stack{
		cfg:       cfg,
		pdf:       services.NewPDFExtractorService(zlog),
		generator: services.NewJobDescriptionService(gateway, prompts, zlog),
		processor: services.NewResumeProcessorService(scorer, zlog),
	}, nil
}
