package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fmasite/config"
	"fmasite/config/database"
	"fmasite/internal/assistant"
	"fmasite/internal/content/repository"
	"fmasite/internal/media"
	"fmasite/pkg/logger"
	"fmasite/router"
	"fmasite/socket"
)

func main() {
	dotenv := config.LoadDotEnv()
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if !dotenv {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect(cfg.DB)
	defer db.Close()

	ctx := context.Background()

	var resolver *media.Resolver
	if cfg.Storage.Endpoint != "" {
		store, err := media.NewMinioStore(ctx, media.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			logger.Sugar.Fatalf("Failed to open media storage: %v", err)
		}
		opts := []media.Option{media.WithMaxWidth(cfg.MaxImageWidth), media.WithJPEGQuality(cfg.JPEGQuality)}
		if cfg.StrictOptimize {
			opts = append(opts, media.WithStrictOptimize())
		}
		resolver = media.NewResolver(store, opts...)
	} else {
		logger.Sugar.Warn("STORAGE_ENDPOINT not set, media library disabled")
	}

	var gen assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Sugar.Errorf("Failed to create Gemini client, assistant disabled: %v", err)
		} else {
			defer gemini.Close()
			gen = gemini
		}
	}

	hubOpts := []socket.HubOption{socket.WithHistoryDepth(cfg.HistoryDepth)}
	if resolver != nil {
		hubOpts = append(hubOpts, socket.WithUploader(resolver))
	}
	hub := socket.NewHub(repository.NewContentRepository(db), hubOpts...)
	go hub.Run()
	go hub.SaveWorker()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.Setup(router.Deps{
			DB:        db,
			Hub:       hub,
			Resolver:  resolver,
			Assistant: assistant.New(gen),
			Config:    cfg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Shutdown: %v", err)
	}
	// Sessions still open keep their edits; write them before exiting.
	hub.Flush()
	logger.Sugar.Info("Server stopped")
}
