package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Images    ImageStats    `json:"images"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type            string      `json:"type"`
	TotalRecords    int64       `json:"total_records"`
	SizeBytes       int64       `json:"size_bytes"`
	CitiesWithImage int64       `json:"cities_with_image"`
	TableStats      []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// ImageStats describes the files kept by the image store
type ImageStats struct {
	Files     int64 `json:"files"`
	SizeBytes int64 `json:"size_bytes"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// UsageReporter reports how many image files are stored and their total size
type UsageReporter interface {
	Usage() (files int64, bytes int64, err error)
}

// sizeQueries are best effort; a failing size query leaves the size at zero.
type sizeQueries struct {
	database string
	table    string
}

var (
	postgresSizes = sizeQueries{
		database: `SELECT pg_database_size(current_database())`,
		table:    `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`,
	}
	// dbstat only exists when sqlite is built with SQLITE_ENABLE_DBSTAT_VTAB
	sqliteSizes = sizeQueries{
		database: `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`,
		table:    `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`,
	}
)

var (
	memStatsCacheDuration = 5 * time.Second
	tables                = []string{"cities"}
)

// Collector gathers database, image store and runtime statistics
type Collector struct {
	db        *sqlx.DB
	dbType    config.DBType
	sizes     sizeQueries
	images    UsageReporter
	startTime time.Time

	memMu     sync.Mutex
	cachedMem *MemoryStats
	cacheTime time.Time
}

// NewCollector creates a collector for the given database and image store
func NewCollector(db *sqlx.DB, cfg config.DBConfig, images UsageReporter) *Collector {
	sizes := sqliteSizes
	if cfg.Type == config.DBTypePostgreSQL {
		sizes = postgresSizes
	}
	return &Collector{
		db:        db,
		dbType:    cfg.Type,
		sizes:     sizes,
		images:    images,
		startTime: time.Now(),
	}
}

// Collect queries the database and walks the image directory concurrently
func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
		Memory:    c.memoryStats(),
		Runtime: RuntimeStats{
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		db, err := c.databaseStats(gctx)
		if err != nil {
			return err
		}
		stats.Database = db
		return nil
	})
	g.Go(func() error {
		if c.images == nil {
			return nil
		}
		files, bytes, err := c.images.Usage()
		if err != nil {
			return fmt.Errorf("failed to collect image usage: %w", err)
		}
		stats.Images = ImageStats{Files: files, SizeBytes: bytes}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (c *Collector) memoryStats() MemoryStats {
	c.memMu.Lock()
	defer c.memMu.Unlock()

	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		return *c.cachedMem
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.cachedMem = &MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapInuse:  m.HeapInuse,
	}
	c.cacheTime = time.Now()
	return *c.cachedMem
}

func (c *Collector) databaseStats(ctx context.Context) (DatabaseStats, error) {
	stats := DatabaseStats{
		Type:       string(c.dbType),
		TableStats: make([]TableStat, 0, len(tables)),
	}

	_ = c.db.GetContext(ctx, &stats.SizeBytes, c.sizes.database)

	for _, table := range tables {
		ts := TableStat{Name: table}
		if err := c.db.GetContext(ctx, &ts.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
			return DatabaseStats{}, fmt.Errorf("failed to count %s: %w", table, err)
		}
		_ = c.db.GetContext(ctx, &ts.SizeBytes, c.sizes.table, table)

		stats.TableStats = append(stats.TableStats, ts)
		stats.TotalRecords += ts.RowCount
	}

	err := c.db.GetContext(ctx, &stats.CitiesWithImage,
		"SELECT COUNT(*) FROM cities WHERE image_path IS NOT NULL AND image_path <> ''")
	if err != nil {
		return DatabaseStats{}, fmt.Errorf("failed to count cities with image: %w", err)
	}

	return stats, nil
}
