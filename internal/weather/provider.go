package weather

import (
	"context"
)

// Provider abstracts the weather data source (OpenWeatherMap).
// Fetch runs one fetch-and-map for a normalized city name. Any failure is
// returned as a *FetchError and no partial Report is ever produced.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Report, error)
}
