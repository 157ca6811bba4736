package weather

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrNoProvider is returned by Service.Fetch when no provider is wired.
var ErrNoProvider = errors.New("no weather provider configured")

// Service turns raw query text into one bounded provider call.
type Service struct {
	provider    Provider
	defaultCity string
	timeout     time.Duration
}

// NewService creates a new Service. A timeout <= 0 leaves the caller's
// context as the only bound.
func NewService(provider Provider, defaultCity string, timeout time.Duration) *Service {
	return &Service{
		provider:    provider,
		defaultCity: NormalizeCity(defaultCity, DefaultCity),
		timeout:     timeout,
	}
}

// DefaultCity returns the city used for blank queries.
func (s *Service) DefaultCity() string {
	return s.defaultCity
}

// Fetch normalizes the query text (blank means the default city) before any
// request is built, then runs a single fetch-and-map.
func (s *Service) Fetch(ctx context.Context, query string) (Report, error) {
	city := NormalizeCity(query, s.defaultCity)

	if s.provider == nil {
		log.Printf("ERROR: no provider available to fetch weather for %q", city)
		return Report{}, ErrNoProvider
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Printf("DEBUG: fetching weather for %q from %s", city, s.provider.Name())

	report, err := s.provider.Fetch(ctx, city)
	if err != nil {
		log.Printf("provider %s fetch failed for %q: %v", s.provider.Name(), city, err)
		return Report{}, err
	}
	return report, nil
}
