package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/config"
	"github.com/talentsift/resume-scorer/internal/handlers"
	"github.com/talentsift/resume-scorer/internal/logger"
	"github.com/talentsift/resume-scorer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	ctx := context.Background()

	// Initialize services
	gateway, err := services.NewGeminiGateway(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize gemini gateway", zap.Error(err))
	}

	pdfExtractor := services.NewPDFExtractorService(zlog)
	prompts := services.NewPromptBuilder()
	tempFiles := services.NewTempFileService(cfg.Storage.MaxUploadSize, zlog)
	jobDescGenerator := services.NewJobDescriptionService(gateway, prompts, zlog)

	// The similarity index is optional; without it the ATS score falls back
	// to the in-process cosine.
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
			zlog.Fatal("failed to initialize qdrant index", zap.Error(err))
		}
		if err := qdrantIndex.EnsureCollection(ctx); err != nil {
			zlog.Fatal("failed to initialize qdrant collection", zap.Error(err))
		}
		index = qdrantIndex
		zlog.Info("qdrant similarity index enabled", zap.String("collection", cfg.Qdrant.Collection))
	}

	scorer := services.NewResumeScorerService(gateway, index, prompts, zlog)
	processor := services.NewResumeProcessorService(scorer, zlog)
	zlog.Info("services initialized")

	// Initialize handlers
	scoreHandler := handlers.NewScoreHandler(processor, tempFiles, pdfExtractor, jobDescGenerator, zlog)
	documentHandler := handlers.NewDocumentHandler(tempFiles, pdfExtractor, zlog)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Scorer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxRequestBody),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "resume-scorer",
			"time":    time.Now(),
		})
	})

	// API endpoints
	api.Post("/resumes/score", scoreHandler.HandleScoreResumes)
	api.Post("/job-descriptions", documentHandler.HandleCreateJobDescription)
	api.Post("/resumes", documentHandler.HandleCreateResume)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Scorer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes/score",
				"POST /api/v1/job-descriptions",
				"POST /api/v1/resumes",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
