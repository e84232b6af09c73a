package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/api/handlers"
	redisCache "github.com/complaint-desk/backend/internal/cache/redis"
	"github.com/complaint-desk/backend/internal/classifier"
	"github.com/complaint-desk/backend/internal/intake"
	"github.com/complaint-desk/backend/internal/llm"
	"github.com/complaint-desk/backend/internal/metrics"
	"github.com/complaint-desk/backend/internal/middleware/ratelimit"
	"github.com/complaint-desk/backend/internal/middleware/security"
	"github.com/complaint-desk/backend/internal/notifier"
	"github.com/complaint-desk/backend/internal/storage/sqlite"
	"github.com/complaint-desk/backend/pkg/config"
	appLogger "github.com/complaint-desk/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Complaint Desk API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Redis only caches classification results; intake keeps working without it.
	var classificationCache classifier.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redisCache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, classification cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			classificationCache = redisClient
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	complaintClassifier := classifier.New(
		llmClient,
		classificationCache,
		cfg.Classification.Departments,
		cfg.Classification.DefaultDepartment,
		time.Duration(cfg.Classification.CacheTTLMin)*time.Minute,
	)

	mailSender := notifier.NewSMTPSender(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Sender,
		cfg.SMTP.Password,
	)
	alertNotifier := notifier.New(mailSender, cfg.SMTP.AdminEmail)

	feed := handlers.NewFeed()

	service := intake.NewService(
		sqliteClient,
		complaintClassifier,
		alertNotifier,
		feed,
		cfg.Classification.Departments,
		cfg.Classification.ConfidenceThreshold,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	complaintHandler := handlers.NewComplaintHandler(service)

	api := app.Group("/api/v1")

	api.Post("/complaints", complaintHandler.Submit)
	api.Get("/complaints", complaintHandler.List)
	api.Get("/complaints/search", complaintHandler.Search)
	api.Get("/complaints/export", complaintHandler.Export)

	api.Use("/complaints/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/complaints/feed", websocket.New(feed.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
