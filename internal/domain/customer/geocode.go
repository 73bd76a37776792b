package customer

import (
	"context"
	"errors"
)

var ErrGeocodeNotFound = errors.New("address could not be geocoded")
var ErrGeocodeRateLimited = errors.New("geocoding provider rate limit reached")

// Coordinate is a position in signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder resolves a postal address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinate, error)
}
