package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"

	"github.com/alexivanou/citylist-api/internal/model"
	"go.uber.org/zap"
)

// PageSize is the number of cities returned per page
const PageSize = 12

// Update renames a city and, when image is not empty, replaces its image
func (s *Service) Update(ctx context.Context, id int64, image []byte, req model.CityUpdateRequest) (*model.CityResponse, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	city, err := s.cityRepo.GetCityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("%w: id = %d", model.ErrCityNotFound, id)
	}

	oldPath := city.ImagePath
	if len(image) > 0 {
		path, err := s.images.Save(image, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		city.ImagePath = sql.NullString{String: path, Valid: true}
	} else {
		s.logger.Warn("New image body was empty", zap.Int64("id", id))
	}
	city.Name = req.Name

	if err := s.cityRepo.UpdateCity(ctx, city); err != nil {
		if city.ImagePath != oldPath {
			_ = s.images.Delete(city.ImagePath.String)
		}
		return nil, fmt.Errorf("failed to update city: %w", err)
	}

	if city.ImagePath != oldPath && oldPath.Valid {
		if err := s.images.Delete(oldPath.String); err != nil {
			s.logger.Warn("Failed to delete previous image", zap.Int64("id", id), zap.Error(err))
		}
	}

	resp := model.ToCityResponse(*city)
	s.logger.Info("Updated the city", zap.Int64("id", resp.ID))
	return &resp, nil
}

// GetImageByID opens the image of a city. The caller closes the returned reader.
func (s *Service) GetImageByID(ctx context.Context, id int64) (io.ReadCloser, error) {
	city, err := s.cityRepo.GetCityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("%w: id = %d", model.ErrCityNotFound, id)
	}

	if !city.ImagePath.Valid || city.ImagePath.String == "" {
		return nil, fmt.Errorf("%w: city %d has no image", model.ErrImageNotFound, id)
	}

	rc, err := s.images.Open(city.ImagePath.String)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrImageNotFound, city.ImagePath.String)
	}
	return rc, nil
}

// GetCitiesByPage returns the 1-based page of all cities
func (s *Service) GetCitiesByPage(ctx context.Context, page int) (*model.CitiesPaginationResponse, error) {
	offset, err := pageOffset(page)
	if err != nil {
		return nil, err
	}

	result, err := s.cityRepo.FindPage(ctx, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get cities: %w", err)
	}

	resp := model.ToCitiesPaginationResponse(*result, page, PageSize)
	s.logger.Info("Retrieved cities by page", zap.Int("page", page), zap.Int("result_size", len(resp.Cities)))
	return &resp, nil
}

// GetCitiesByPageAndName returns the 1-based page of cities whose name contains name, ignoring case
func (s *Service) GetCitiesByPageAndName(ctx context.Context, page int, name string) (*model.CitiesPaginationResponse, error) {
	offset, err := pageOffset(page)
	if err != nil {
		return nil, err
	}

	result, err := s.cityRepo.FindPageByName(ctx, name, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}

	resp := model.ToCitiesPaginationResponse(*result, page, PageSize)
	s.logger.Info("Retrieved cities by page and name",
		zap.Int("page", page),
		zap.String("name", name),
		zap.Int("result_size", len(resp.Cities)),
	)
	return &resp, nil
}

// pageOffset clamps offsets past math.MaxInt so far pages come back empty instead of wrapping.
func pageOffset(page int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidPage, page)
	}
	if page-1 > math.MaxInt/PageSize {
		return math.MaxInt, nil
	}
	return (page - 1) * PageSize, nil
}
