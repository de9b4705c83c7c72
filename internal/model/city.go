package model

import "database/sql"

// City represents a city in the database
type City struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	ImagePath sql.NullString `db:"image_path"`
}

// SeedRow is one record of the bundled city list: an ignored leading column,
// the city name and the URL of its image.
type SeedRow struct {
	Name     string
	ImageURL string
}

// CityPage is a slice of the cities table together with the size of the
// whole (possibly filtered) result set.
type CityPage struct {
	Cities        []City
	TotalElements int64
}
