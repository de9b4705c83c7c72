package model

import "errors"

// Callers wrap these with detail, e.g. fmt.Errorf("%w: id = %d", ErrCityNotFound, id),
// and the API layer maps them to status codes with errors.Is.
var (
	ErrCityNotFound  = errors.New("city not found")
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidPage   = errors.New("invalid page number")
	ErrValidation    = errors.New("validation failed")
)
