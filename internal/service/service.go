package service

import (
	"io"

	"github.com/alexivanou/citylist-api/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ImageStore stores city images on disk
type ImageStore interface {
	Save(data []byte, cityName string) (string, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

// Service provides business logic for the API
type Service struct {
	cityRepo repository.CityRepository
	images   ImageStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new service instance
func NewService(
	cityRepo repository.CityRepository,
	images ImageStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		cityRepo: cityRepo,
		images:   images,
		validate: newValidator(),
		logger:   logger,
	}
}
