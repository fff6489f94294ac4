package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/admission-tracker/internal/config"
	"alfredoptarigan/admission-tracker/internal/handlers"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/repositories"
	"alfredoptarigan/admission-tracker/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("config loaded", map[string]interface{}{"env": cfg.Server.Env})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server stopped with error", nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := config.InitRedis(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	var locker services.Locker
	if redisClient != nil {
		locker = services.NewRedisLocker(redisClient, cfg.ScreeningLockTTL())
	} else {
		locker = services.NewLocalLocker()
	}

	// Repositories
	applicantRepo := repositories.NewApplicantRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewCVAnalysisRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		return err
	}
	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini: %w", err)
	}

	// Rubric retrieval is optional; the judge grades without context when
	// the vector store is unreachable.
	var qdrantService services.QdrantService
	if q, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log); err != nil {
		log.WithError(err).Warn("qdrant unavailable, rubric retrieval disabled", nil)
	} else if err := q.InitCollection(ctx); err != nil {
		log.WithError(err).Warn("qdrant collection init failed, rubric retrieval disabled", nil)
	} else {
		qdrantService = q
	}

	evaluator, err := services.NewSemanticEvaluator(geminiService, qdrantService, cfg.Worker.RetryMaxAttempts, log)
	if err != nil {
		return err
	}
	engine, err := services.NewCompetencyScoringEngine()
	if err != nil {
		return fmt.Errorf("failed to load survey instruments: %w", err)
	}
	normalizer := services.NewSkillNormalizer()
	aggregator := services.NewInterviewScoringAggregator(evaluator)

	analyzer := services.NewCVAnalyzer(analysisRepo, applicantRepo, pdfParser, evaluator, normalizer, log)
	worker := services.NewWorker(analysisRepo, analyzer, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
	worker.Start(ctx)

	var video, calendar services.MeetingScheduler
	if cfg.Zoom.APIToken != "" {
		video = services.NewZoomScheduler(cfg.Zoom.BaseURL, cfg.Zoom.APIToken, cfg.Zoom.UserID)
	} else {
		log.Warn("zoom not configured, screenings get no video meeting", nil)
	}
	if cfg.Calendar.APIToken != "" {
		calendar = services.NewCalendarScheduler(cfg.Calendar.BaseURL, cfg.Calendar.APIToken, cfg.Calendar.CalendarID)
	} else {
		log.Warn("calendar not configured, screenings get no calendar event", nil)
	}

	notifier := services.NewLogNotifier(log)
	if cfg.Email.Enabled {
		notifier, err = services.NewSESNotifier(ctx, cfg.Email.Region, cfg.Email.FromEmail, log)
		if err != nil {
			return fmt.Errorf("failed to initialize email: %w", err)
		}
	}

	tracker := services.NewApplicationStateTracker(
		applicationRepo,
		applicantRepo,
		video,
		calendar,
		notifier,
		services.NewTextRenderer(),
		locker,
		services.TrackerOptions{
			StrictScreening:        cfg.Workflow.StrictScreening,
			CollaboratorTimeout:    cfg.Workflow.CollaboratorTimeout,
			DefaultDurationMinutes: cfg.Workflow.ScreeningDurationMin,
			DefaultTimezone:        cfg.Workflow.DefaultTimezone,
		},
		log,
	)
	applicantService := services.NewApplicantService(applicantRepo, normalizer, log)
	assessmentService := services.NewAssessmentService(applicantRepo, applicationRepo, aggregator, engine, log)

	app := fiber.New(fiber.Config{
		AppName:      "Admission Tracker API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(log),
	})

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

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	handlers.RegisterRoutes(api, handlers.Handlers{
		Applicant:   handlers.NewApplicantHandler(applicantService),
		Upload:      handlers.NewUploadHandler(applicantRepo, docRepo, analysisRepo, storageService, worker, log),
		Result:      handlers.NewResultHandler(analysisRepo),
		Assessment:  handlers.NewAssessmentHandler(assessmentService),
		Application: handlers.NewApplicationHandler(tracker),
		Admin:       handlers.NewAdminHandler(tracker),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server", nil)
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server forced to shutdown", nil)
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", map[string]interface{}{"addr": addr})
	return app.Listen(addr)
}
