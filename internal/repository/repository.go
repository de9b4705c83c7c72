package repository

import (
	"context"
	"strings"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// CityRepository defines operations for cities
type CityRepository interface {
	Count(ctx context.Context) (int64, error)
	GetCityByID(ctx context.Context, id int64) (*model.City, error)
	FindPage(ctx context.Context, limit, offset int) (*model.CityPage, error)
	FindPageByName(ctx context.Context, namePart string, limit, offset int) (*model.CityPage, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
	UpdateCity(ctx context.Context, city *model.City) error
	DeleteAll(ctx context.Context) error
}

// Container holds all repositories
type Container struct {
	City CityRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City: &pgCityRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		City: &sqliteCityRepository{db: db},
	}
}

const insertCityQuery = `INSERT INTO cities (name, image_path) VALUES (:name, :image_path)`

// escapeLike makes LIKE wildcards in user input match literally (ESCAPE '\').
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func chunkCities(cities []model.City, chunkSize int) [][]model.City {
	var chunks [][]model.City
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		chunks = append(chunks, cities[i:end])
	}
	return chunks
}
