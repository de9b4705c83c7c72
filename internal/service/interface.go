package service

import (
	"context"
	"io"

	"github.com/alexivanou/citylist-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Update(ctx context.Context, id int64, image []byte, req model.CityUpdateRequest) (*model.CityResponse, error)
	GetImageByID(ctx context.Context, id int64) (io.ReadCloser, error)
	GetCitiesByPage(ctx context.Context, page int) (*model.CitiesPaginationResponse, error)
	GetCitiesByPageAndName(ctx context.Context, page int, name string) (*model.CitiesPaginationResponse, error)
}
