package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/database"
	"github.com/alexivanou/citylist-api/internal/stats"
	"github.com/alexivanou/citylist-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	format := flag.String("format", "json", "Output format: json or text")
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

	// A fresh in-memory database has no schema yet
	if cfg.DB.IsMemory() {
		if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	collector := stats.NewCollector(db, cfg.DB, storage.NewImageStore(cfg.Storage.ImagesDir))
	statistics, err := collector.Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(statistics)
	case "text":
		err = writeText(os.Stdout, statistics, cfg.Storage.ImagesDir)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
	if err != nil {
		logger.Fatal("Failed to write statistics", zap.Error(err))
	}
}

func writeText(out io.Writer, s *stats.Stats, imagesDir string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Collected at\t%s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Database (%s)\t%s\n", s.Database.Type, humanBytes(s.Database.SizeBytes))
	for _, ts := range s.Database.TableStats {
		fmt.Fprintf(tw, "  %s\t%d rows\t%s\n", ts.Name, ts.RowCount, humanBytes(ts.SizeBytes))
	}
	fmt.Fprintf(tw, "  cities with image\t%d\n", s.Database.CitiesWithImage)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Images (%s)\t%d files\t%s\n", imagesDir, s.Images.Files, humanBytes(s.Images.SizeBytes))
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Heap in use\t%s\n", humanBytes(int64(s.Memory.HeapInuse)))
	fmt.Fprintf(tw, "Goroutines\t%d\n", s.Runtime.NumGoroutines)

	return tw.Flush()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value, suffix := float64(n), ""
	for _, s := range []string{"KiB", "MiB", "GiB", "TiB"} {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}
