package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/citylist-api/internal/api"
	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/database"
	"github.com/alexivanou/citylist-api/internal/imagesource"
	"github.com/alexivanou/citylist-api/internal/repository"
	"github.com/alexivanou/citylist-api/internal/seeder"
	"github.com/alexivanou/citylist-api/internal/service"
	"github.com/alexivanou/citylist-api/internal/stats"
	"github.com/alexivanou/citylist-api/internal/storage"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server exited")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		return err
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	images := storage.NewImageStore(cfg.Storage.ImagesDir)

	// The city table is filled on the first page request, not at startup.
	initializer := seeder.NewInitializer(
		repos.City,
		seeder.NewParser(cfg.Seeder.CSVPath, logger),
		imagesource.NewClient(cfg.ImageSource),
		images,
		seeder.Options{BatchSize: cfg.Seeder.BatchSize, Workers: cfg.Seeder.Workers},
		logger,
	)

	svc := service.NewService(repos.City, images, logger)
	statsCollector := stats.NewCollector(db, cfg.DB, images)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     api.NewRouter(svc, initializer, statsCollector, cfg.Server.CORSAllowedOrigins, logger),
		ReadTimeout: 15 * time.Second,
		// the first page request downloads every image before it answers
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
