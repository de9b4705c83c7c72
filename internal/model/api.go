package model

// CityResponse represents a city returned to API clients
type CityResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"imagePath"`
}

// CitiesPaginationResponse represents one page of cities
type CitiesPaginationResponse struct {
	Cities        []CityResponse `json:"cities"`
	CurrentPage   int            `json:"currentPage"`
	TotalPages    int            `json:"totalPages"`
	TotalElements int64          `json:"totalElements"`
}

// CityUpdateRequest carries the editable properties of a city
type CityUpdateRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// ErrorResponse is the uniform error body of the API
type ErrorResponse struct {
	Type          string   `json:"type"`
	ErrorMessages []string `json:"errorMessages"`
}

// ToCityResponse converts a stored city into its API view
func ToCityResponse(c City) CityResponse {
	return CityResponse{
		ID:        c.ID,
		Name:      c.Name,
		ImagePath: c.ImagePath.String,
	}
}

// ToCitiesPaginationResponse converts a page of stored cities into its API view.
// page is 1-based; an empty page reports CurrentPage 0.
func ToCitiesPaginationResponse(p CityPage, page, pageSize int) CitiesPaginationResponse {
	cities := make([]CityResponse, 0, len(p.Cities))
	for _, c := range p.Cities {
		cities = append(cities, ToCityResponse(c))
	}

	currentPage := page
	if len(cities) == 0 {
		currentPage = 0
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((p.TotalElements + int64(pageSize) - 1) / int64(pageSize))
	}

	return CitiesPaginationResponse{
		Cities:        cities,
		CurrentPage:   currentPage,
		TotalPages:    totalPages,
		TotalElements: p.TotalElements,
	}
}
