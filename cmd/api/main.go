package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-form-backend/config"
	_ "contact-form-backend/docs" // Important for Swagger
	v1 "contact-form-backend/internal/delivery/http/v1"
	"contact-form-backend/internal/usecase"
	"contact-form-backend/pkg/jmapclient"
	"contact-form-backend/pkg/logger"
	"contact-form-backend/pkg/redis"
	"contact-form-backend/pkg/render"
)

// @title           Contact Form API
// @version         1.0
// @description     Delivers contact form submissions through a JMAP mail account.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting contact form backend", "port", cfg.Port, "contact_path", cfg.ContactPath)

	// 3. Setup Renderer
	renderer, err := render.New(context.Background(), render.Options{
		Dir:             cfg.StaticDir,
		Bucket:          cfg.StaticBucket,
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logger.Log.Error("Failed to set up renderer", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional, only backs the rate limiter)
	if cfg.ContactRateLimit > 0 && cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting will use in-memory fallback", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Mail Gateway
	mailClient := jmapclient.NewClient(cfg.JMAPSessionURL, cfg.JMAPToken, jmapclient.WithTimeout(cfg.UpstreamTimeout))
	if err := cfg.MailConfig().Validate(); err != nil {
		logger.Log.Warn("Mail service not fully configured - contact form will be unavailable", "error", err)
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(cfg.MailConfig(), mailClient, cfg.ContactSourceLabel)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		Renderer:  renderer,
		Config:    cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
