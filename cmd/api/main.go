package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/infra"
	"github.com/vidstream/vidstream/internal/logging"
	"github.com/vidstream/vidstream/internal/server"
	"github.com/vidstream/vidstream/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	if err := infra.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}()

	var uploads storage.Uploader
	if cfg.MediaEndpoint != "" {
		store, err := infra.NewObjectStore(ctx, cfg.MediaEndpoint, cfg.MediaAccessKey, cfg.MediaSecretKey, cfg.MediaBucket, cfg.MediaUseSSL)
		if err != nil {
			logger.Error("connect object store", "error", err)
			os.Exit(1)
		}
		publicURL := cfg.MediaPublicURL
		if publicURL == "" {
			scheme := "http"
			if cfg.MediaUseSSL {
				scheme = "https"
			}
			publicURL = fmt.Sprintf("%s://%s", scheme, cfg.MediaEndpoint)
		}
		uploads = storage.NewMinioUploader(store, cfg.MediaBucket, publicURL)
	} else {
		logger.Warn("MEDIA_ENDPOINT not set, storing uploads in memory")
		uploads = storage.NewMemoryUploader()
	}

	srv, err := server.New(cfg, db, cache, uploads, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
