package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/guardline/backend/internal/analysis"
	"github.com/guardline/backend/internal/api/handlers"
	cache "github.com/guardline/backend/internal/cache/redis"
	"github.com/guardline/backend/internal/classifier/moderation"
	"github.com/guardline/backend/internal/classifier/toxicity"
	"github.com/guardline/backend/internal/metrics"
	"github.com/guardline/backend/internal/middleware/ratelimit"
	"github.com/guardline/backend/internal/middleware/security"
	"github.com/guardline/backend/internal/middleware/validation"
	"github.com/guardline/backend/pkg/config"
	appLogger "github.com/guardline/backend/pkg/logger"
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

	appLogger.Info("Starting Guardline analysis API server")

	metrics.Init()

	// A missing cache only costs recomputation; boot proceeds without it.
	cacheClient, err := cache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, analysis caching disabled", zap.Error(err))
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	toxicityClient := toxicity.NewClient(
		cfg.Toxicity.Endpoint,
		cfg.Toxicity.APIKey,
		cfg.Toxicity.TimeoutSec,
	)

	moderationClient := moderation.NewClient(
		cfg.Moderation.APIKey,
		cfg.Moderation.Model,
		cfg.Moderation.TimeoutSec,
	)

	analyzer := analysis.NewAnalyzer(toxicityClient, moderationClient)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Guardian-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Analysis.RateLimitPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		MaxMessageLength:        cfg.Analysis.MaxMessageLength,
		MaxConversationMessages: cfg.Analysis.MaxConversationMessages,
		Logger:                  appLogger.GetLogger(),
	}))

	analyzeHandler := handlers.NewAnalyzeHandler(
		analyzer,
		cacheClient,
		time.Duration(cfg.Analysis.CacheTTLSec)*time.Second,
	)
	wsHandler := handlers.NewWebSocketHandler(analyzer)

	api := app.Group("/api/v1")

	api.Post("/analyze", analyzeHandler.HandleMessage)
	api.Post("/analyze/conversation", analyzeHandler.HandleConversation)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/analyze", websocket.New(wsHandler.HandleConnection))

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
