package seeder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexivanou/citylist-api/internal/model"
	"go.uber.org/zap"
)

// Columns of the bundled city list: [unused, name, imageUrl]
const (
	nameColumn     = 1
	imageURLColumn = 2
	minColumns     = 3
)

// Parser reads the bundled city list
type Parser struct {
	csvPath string
	logger  *zap.Logger
}

// NewParser creates a new parser for the CSV file at csvPath
func NewParser(csvPath string, logger *zap.Logger) *Parser {
	return &Parser{
		csvPath: csvPath,
		logger:  logger,
	}
}

// ParseCities reads every seed row of the CSV file, skipping the header
func (p *Parser) ParseCities() ([]model.SeedRow, error) {
	file, err := os.Open(p.csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p.csvPath, err)
	}
	defer file.Close()

	return p.parseFromReader(file)
}

func (p *Parser) parseFromReader(reader io.Reader) ([]model.SeedRow, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	// Header
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []model.SeedRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read city list: %w", err)
		}

		line, _ := r.FieldPos(0)
		if len(record) < minColumns {
			p.logger.Warn("Skipping short row", zap.Int("line", line), zap.Int("fields", len(record)))
			continue
		}

		name := strings.TrimSpace(record[nameColumn])
		imageURL := strings.TrimSpace(record[imageURLColumn])
		if name == "" || imageURL == "" {
			p.logger.Warn("Skipping row without name or image url", zap.Int("line", line))
			continue
		}

		rows = append(rows, model.SeedRow{Name: name, ImageURL: imageURL})
	}

	return rows, nil
}

// Batches splits rows into consecutive slices of at most size rows, preserving order
func Batches(rows []model.SeedRow, size int) [][]model.SeedRow {
	if size <= 0 || len(rows) == 0 {
		return nil
	}

	batches := make([][]model.SeedRow, 0, (len(rows)+size-1)/size)
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[i:end])
	}
	return batches
}
