package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pgCityRepository) GetCityByID(ctx context.Context, id int64) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT id, name, image_path FROM cities WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) FindPage(ctx context.Context, limit, offset int) (*model.CityPage, error) {
	page := &model.CityPage{}
	if err := r.db.GetContext(ctx, &page.TotalElements, "SELECT COUNT(*) FROM cities"); err != nil {
		return nil, err
	}

	q := `SELECT id, name, image_path FROM cities ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &page.Cities, q, limit, offset); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *pgCityRepository) FindPageByName(ctx context.Context, namePart string, limit, offset int) (*model.CityPage, error) {
	pattern := escapeLike(namePart)
	where := `WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'`

	page := &model.CityPage{}
	if err := r.db.GetContext(ctx, &page.TotalElements, "SELECT COUNT(*) FROM cities "+where, pattern); err != nil {
		return nil, err
	}

	q := `SELECT id, name, image_path FROM cities ` + where + ` ORDER BY id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &page.Cities, q, pattern, limit, offset); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	if len(cities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Chunking to avoid parameter limit issues even in PG (max 65535 parameters)
	for _, chunk := range chunkCities(cities, 2000) {
		if _, err := tx.NamedExecContext(ctx, insertCityQuery, chunk); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *pgCityRepository) UpdateCity(ctx context.Context, city *model.City) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cities SET name = $1, image_path = $2 WHERE id = $3",
		city.Name, city.ImagePath, city.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("city %d: %w", city.ID, sql.ErrNoRows)
	}
	return nil
}

func (r *pgCityRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cities")
	return err
}
