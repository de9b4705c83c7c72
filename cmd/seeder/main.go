package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/database"
	"github.com/alexivanou/citylist-api/internal/imagesource"
	"github.com/alexivanou/citylist-api/internal/repository"
	"github.com/alexivanou/citylist-api/internal/seeder"
	"github.com/alexivanou/citylist-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		reset = flag.Bool("reset", false, "Delete all city rows before importing (stored image files are kept)")
		dir   = flag.String("migrations", "migrations", "Directory holding the migration sets")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, *dir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	if *reset {
		logger.Info("Deleting existing cities...")
		if err := repos.City.DeleteAll(ctx); err != nil {
			logger.Fatal("Failed to delete cities", zap.Error(err))
		}
	}

	initializer := seeder.NewInitializer(
		repos.City,
		seeder.NewParser(cfg.Seeder.CSVPath, logger),
		imagesource.NewClient(cfg.ImageSource),
		storage.NewImageStore(cfg.Storage.ImagesDir),
		seeder.Options{BatchSize: cfg.Seeder.BatchSize, Workers: cfg.Seeder.Workers},
		logger,
	)

	logger.Info("Starting city import...", zap.String("csv", cfg.Seeder.CSVPath))
	res, err := initializer.InitializeDB(ctx)
	if err != nil {
		logger.Fatal("City import failed", zap.Error(err))
	}

	if !res.Performed {
		logger.Info("Cities table is not empty, nothing imported (use -reset to start over)")
		return
	}

	logger.Info("City import completed successfully!",
		zap.Int("rows", res.Rows),
		zap.Int("batches", res.Batches),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	if cfg.DB.IsMemory() {
		logger.Warn("DB_TYPE is memory, imported rows are gone once this process exits")
	}
}
