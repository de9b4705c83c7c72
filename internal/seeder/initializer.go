package seeder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/alexivanou/citylist-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RowSource provides the rows to import
type RowSource interface {
	ParseCities() ([]model.SeedRow, error)
}

// ImageFetcher downloads an image. Failures wrapping model.ErrImageNotFound skip the row.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageStore persists downloaded images
type ImageStore interface {
	Save(data []byte, cityName string) (string, error)
	Delete(path string) error
}

// Options tune the import
type Options struct {
	BatchSize int
	// Workers bounds the number of batches imported at once; <= 0 means no bound.
	Workers int
}

// Result summarizes one InitializeDB call
type Result struct {
	Performed bool
	Rows      int
	Batches   int
	Imported  int
	Skipped   int
	Duration  time.Duration
}

// Initializer fills an empty cities table from the bundled city list.
// It runs at most once per process.
type Initializer struct {
	mu        sync.Mutex
	triggered bool

	cityRepo repository.CityRepository
	source   RowSource
	fetcher  ImageFetcher
	images   ImageStore
	opts     Options
	logger   *zap.Logger
}

// NewInitializer creates a new initializer
func NewInitializer(
	cityRepo repository.CityRepository,
	source RowSource,
	fetcher ImageFetcher,
	images ImageStore,
	opts Options,
	logger *zap.Logger,
) *Initializer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Initializer{
		cityRepo: cityRepo,
		source:   source,
		fetcher:  fetcher,
		images:   images,
		opts:     opts,
		logger:   logger,
	}
}

// InitializeDB imports the city list if it has not been triggered yet in this process
// and the cities table is empty. Concurrent callers wait for a running import and then
// return without doing anything. Batches that were persisted stay persisted when another
// batch fails.
func (i *Initializer) InitializeDB(ctx context.Context) (Result, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.triggered {
		return Result{}, nil
	}

	count, err := i.cityRepo.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count cities: %w", err)
	}
	if count != 0 {
		return Result{}, nil
	}
	i.triggered = true

	// The import is not tied to the lifetime of the request that triggered it.
	return i.run(context.WithoutCancel(ctx))
}

func (i *Initializer) run(ctx context.Context) (Result, error) {
	start := time.Now()
	i.logger.Info("DB initialization started")

	rows, err := i.source.ParseCities()
	if err != nil {
		return Result{Performed: true}, fmt.Errorf("failed to parse cities: %w", err)
	}

	batches := Batches(rows, i.opts.BatchSize)
	var imported atomic.Int64

	var g errgroup.Group
	if i.opts.Workers > 0 {
		g.SetLimit(i.opts.Workers)
	}
	for n, batch := range batches {
		n, batch := n, batch
		g.Go(func() error {
			saved, err := i.importBatch(ctx, n+1, batch)
			imported.Add(int64(saved))
			return err
		})
	}
	err = g.Wait()

	res := Result{
		Performed: true,
		Rows:      len(rows),
		Batches:   len(batches),
		Imported:  int(imported.Load()),
		Duration:  time.Since(start),
	}
	res.Skipped = res.Rows - res.Imported

	if err != nil {
		i.logger.Error("DB initialization failed", zap.Error(err), zap.Int("imported", res.Imported))
		return res, err
	}

	i.logger.Info("DB initialization completed",
		zap.Int("rows", res.Rows),
		zap.Int("batches", res.Batches),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// importBatch fetches and stores the images of one batch and persists its cities in one call.
// On failure the images written for this batch are removed again.
func (i *Initializer) importBatch(ctx context.Context, n int, rows []model.SeedRow) (int, error) {
	log := i.logger.With(zap.Int("batch", n))
	cities := make([]model.City, 0, len(rows))

	cleanup := func() {
		for _, c := range cities {
			if err := i.images.Delete(c.ImagePath.String); err != nil {
				log.Warn("Failed to remove image", zap.Error(err))
			}
		}
	}

	for _, row := range rows {
		data, err := i.fetcher.Fetch(ctx, row.ImageURL)
		if err != nil {
			if errors.Is(err, model.ErrImageNotFound) {
				log.Warn("Skipping city", zap.String("name", row.Name), zap.Error(err))
				continue
			}
			cleanup()
			return 0, fmt.Errorf("batch %d: failed to fetch image for %q: %w", n, row.Name, err)
		}

		path, err := i.images.Save(data, row.Name)
		if err != nil {
			cleanup()
			return 0, fmt.Errorf("batch %d: failed to save image for %q: %w", n, row.Name, err)
		}

		cities = append(cities, model.City{
			Name:      row.Name,
			ImagePath: sql.NullString{String: path, Valid: true},
		})
	}

	if err := i.cityRepo.BulkInsertCities(ctx, cities); err != nil {
		cleanup()
		return 0, fmt.Errorf("batch %d: failed to insert cities: %w", n, err)
	}

	log.Info("City batch saved", zap.Int("saved", len(cities)), zap.Int("rows", len(rows)))
	return len(cities), nil
}
