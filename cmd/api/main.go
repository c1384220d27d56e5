package main

import (
	"context"
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

	"github.com/ecodex/backend/internal/api/handlers"
	"github.com/ecodex/backend/internal/cache/redis"
	"github.com/ecodex/backend/internal/catalog"
	"github.com/ecodex/backend/internal/identify"
	"github.com/ecodex/backend/internal/metrics"
	"github.com/ecodex/backend/internal/middleware/ratelimit"
	"github.com/ecodex/backend/internal/middleware/security"
	"github.com/ecodex/backend/internal/middleware/validation"
	"github.com/ecodex/backend/internal/objectstore"
	"github.com/ecodex/backend/internal/storage/sqlite"
	"github.com/ecodex/backend/internal/vision"
	"github.com/ecodex/backend/pkg/config"
	appLogger "github.com/ecodex/backend/pkg/logger"
	"github.com/ecodex/backend/pkg/retry"
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

	appLogger.Info("Starting Ecodex API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	err = retry.Do(context.Background(), retry.DefaultConfig(), func() error {
		if err := store.InitSchema(); err != nil {
			return err
		}
		return store.Seed()
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize catalog", zap.Error(err))
	}

	var aliasCache catalog.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLMin)*time.Minute,
		)
		if err != nil {
			appLogger.Warn("Alias cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer redisClient.Close()
			aliasCache = redisClient
		}
	}

	var recognizer identify.Recognizer
	switch cfg.Vision.Provider {
	case "openai":
		recognizer = vision.NewOpenAIClient(cfg.Vision.OpenAIAPIKey, cfg.Vision.OpenAIModel)
	default:
		recognizer = vision.NewGoogleClient(
			cfg.Vision.GoogleAPIKey,
			time.Duration(cfg.Vision.TimeoutSec)*time.Second,
			cfg.Vision.MaxResults,
			cfg.Vision.LanguageHints,
		)
	}

	var photos identify.PhotoUploader
	if cfg.ObjectStore.URL != "" {
		photos = objectstore.NewClient(
			cfg.ObjectStore.URL,
			cfg.ObjectStore.ServiceKey,
			cfg.ObjectStore.Bucket,
			time.Duration(cfg.ObjectStore.TimeoutSec)*time.Second,
		)
	} else {
		appLogger.Warn("Photo upload disabled, no object store configured")
	}

	resolver := catalog.NewResolver(store, aliasCache)
	hub := identify.NewHub()
	engine := identify.NewEngine(recognizer, store, resolver, photos, hub, cfg.Pipeline.MinConfidence)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 30,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	identifyHandler := handlers.NewIdentifyHandler(engine)
	speciesHandler := handlers.NewSpeciesHandler(store)
	streamHandler := handlers.NewStreamHandler(hub)

	api := app.Group("/api")

	api.Post("/identify",
		limiter.Middleware(),
		validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}),
		identifyHandler.HandleIdentify,
	)

	api.Get("/species", speciesHandler.ListSpecies)

	app.Use("/api/observations/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/observations/stream", websocket.New(streamHandler.HandleConnection))
	api.Get("/observations", speciesHandler.ListObservations)

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
