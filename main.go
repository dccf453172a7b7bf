package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailflow/config"
	"mailflow/middleware"
	"mailflow/routes"
	"mailflow/store"
	"mailflow/utils"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig
	logger := logrus.NewEntry(utils.NewLogger(cfg.LogLevel, cfg.LogFormat)).WithField("service", "mailflow-api")

	enabled, err := utils.InitSentry(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		logger.WithError(err).Warn("Sentry initialization failed")
	}
	if enabled {
		defer sentry.Flush(2 * time.Second)
	}

	s, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	key := cfg.EncryptionKey
	if key == "" {
		// Only reachable with the memory store: nothing sealed outlives the process.
		if key, err = utils.RandomKey(); err != nil {
			logger.WithError(err).Fatal("Failed to generate encryption key")
		}
		logger.Warn("ENCRYPTION_KEY not set, using a throwaway key")
	}
	secrets, err := utils.NewCipher(key)
	if err != nil {
		logger.WithError(err).Fatal("Invalid ENCRYPTION_KEY")
	}

	app := fiber.New(fiber.Config{
		AppName:      "mailflow",
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           3600,
	}))
	accessLog := logger.WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()
	routes.SetupRoutes(app, s, secrets, logger, accessLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Shutdown failed")
		}
	}()

	logger.WithField("port", cfg.ServerPort).Info("Server starting")
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

func openStore(cfg config.Config, logger *logrus.Entry) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	gs := store.NewGormStore(db)
	logger.Info("Starting database migration...")
	if err := gs.Migrate(); err != nil {
		return nil, err
	}
	logger.Info("Database migration completed")
	return gs, nil
}
