package seeder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParser_ParseCities(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "cities.csv")

	testData := `id,name,photo
1,Tokyo,https://img.example/tokyo.jpg
2,Jakarta,https://img.example/jakarta.jpg
3,short-row
4,"Washington, D.C.",https://img.example/dc.jpg
5,,https://img.example/empty.jpg
6, Delhi ,https://img.example/delhi.jpg,extra
`
	err := os.WriteFile(testFile, []byte(testData), 0644)
	require.NoError(t, err)

	parser := NewParser(testFile, zaptest.NewLogger(t))
	rows, err := parser.ParseCities()
	require.NoError(t, err)

	assert.Equal(t, []model.SeedRow{
		{Name: "Tokyo", ImageURL: "https://img.example/tokyo.jpg"},
		{Name: "Jakarta", ImageURL: "https://img.example/jakarta.jpg"},
		{Name: "Washington, D.C.", ImageURL: "https://img.example/dc.jpg"},
		{Name: "Delhi", ImageURL: "https://img.example/delhi.jpg"},
	}, rows)
}

func TestParser_HeaderOnly(t *testing.T) {
	parser := NewParser("", zaptest.NewLogger(t))

	rows, err := parser.parseFromReader(strings.NewReader("id,name,photo\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = parser.parseFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParser_MissingFile(t *testing.T) {
	parser := NewParser(filepath.Join(t.TempDir(), "nope.csv"), zaptest.NewLogger(t))
	_, err := parser.ParseCities()
	assert.Error(t, err)
}

func TestParser_BundledCityList(t *testing.T) {
	parser := NewParser("../../data/cities.csv", zaptest.NewLogger(t))
	rows, err := parser.ParseCities()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.NotEmpty(t, row.Name)
		assert.True(t, strings.HasPrefix(row.ImageURL, "https://"), row.ImageURL)
	}
}

func makeRows(n int) []model.SeedRow {
	rows := make([]model.SeedRow, n)
	for i := range rows {
		rows[i] = model.SeedRow{Name: fmt.Sprintf("City %d", i), ImageURL: fmt.Sprintf("/img/%d.jpg", i)}
	}
	return rows
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name          string
		rows          int
		size          int
		expectedCount int
		lastLen       int
	}{
		{name: "empty", rows: 0, size: 50, expectedCount: 0},
		{name: "single short batch", rows: 5, size: 50, expectedCount: 1, lastLen: 5},
		{name: "exact multiple", rows: 100, size: 50, expectedCount: 2, lastLen: 50},
		{name: "one over", rows: 51, size: 50, expectedCount: 2, lastLen: 1},
		{name: "thousand rows", rows: 1000, size: 50, expectedCount: 20, lastLen: 50},
		{name: "invalid size", rows: 10, size: 0, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := makeRows(tt.rows)
			batches := Batches(rows, tt.size)
			require.Len(t, batches, tt.expectedCount)
			if tt.expectedCount == 0 {
				return
			}
			assert.Len(t, batches[len(batches)-1], tt.lastLen)

			// batch i covers rows [size*(i-1), size*i)
			for i, batch := range batches {
				for j, row := range batch {
					assert.Equal(t, rows[i*tt.size+j], row)
				}
			}
		})
	}
}
