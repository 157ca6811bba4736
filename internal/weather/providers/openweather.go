package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/cityweather/internal/weather"
)

const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrMissingAPIKey is returned before any request when no API key is set.
var ErrMissingAPIKey = errors.New("openweather api key is not configured")

var validate = validator.New()

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	baseURL     string
	iconBaseURL string
	location    *time.Location
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
}

// Option customizes an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL points the provider at another current-weather endpoint.
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithIconBaseURL changes the prefix used to build icon URLs.
func WithIconBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.iconBaseURL = u
		}
	}
}

// WithLocation sets the zone sunrise and sunset are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(p *OpenWeatherProvider) {
		if loc != nil {
			p.location = loc
		}
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      apiKey,
		baseURL:     DefaultOpenWeatherBaseURL,
		iconBaseURL: weather.DefaultIconBaseURL,
		location:    time.Local,
		client:      client,
		circuit:     newCircuitBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch issues one GET for city and maps the response onto a weather.Report.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.Report{}, &weather.FetchError{Kind: weather.KindNetwork, City: city, Err: err}
	}

	body, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return weather.Report{}, &weather.FetchError{Kind: weather.KindProtocol, City: city, Err: err}
		}
		return weather.Report{}, &weather.FetchError{Kind: weather.KindNetwork, City: city, Err: err}
	}

	report, err := ParseCurrentWeather(body, p.iconBaseURL, p.location)
	if err != nil {
		return weather.Report{}, &weather.FetchError{Kind: weather.KindDecode, City: city, Err: err}
	}
	return report, nil
}

// currentWeatherPayload lists the fields a Report needs. Pointers tell a
// missing field apart from a zero value.
type currentWeatherPayload struct {
	Name *string `json:"name" validate:"required"`
	Main *struct {
		Temp     *float64 `json:"temp" validate:"required"`
		Humidity *int     `json:"humidity" validate:"required"`
	} `json:"main" validate:"required"`
	Weather []struct {
		Description *string `json:"description" validate:"required"`
		Icon        string  `json:"icon" validate:"required"`
	} `json:"weather" validate:"required,min=1,dive"`
	Wind *struct {
		Speed *float64 `json:"speed" validate:"required"`
	} `json:"wind" validate:"required"`
	Sys *struct {
		Sunrise *int64 `json:"sunrise" validate:"required"`
		Sunset  *int64 `json:"sunset" validate:"required"`
	} `json:"sys" validate:"required"`
}

// ParseCurrentWeather decodes a current-weather body. Every field of the
// Report must be present with the right type, otherwise an error is returned
// and no Report is built.
func ParseCurrentWeather(body []byte, iconBaseURL string, loc *time.Location) (weather.Report, error) {
	var payload currentWeatherPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Report{}, fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return weather.Report{}, fmt.Errorf("missing or invalid field: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	current := payload.Weather[0]
	sunrise := *payload.Sys.Sunrise
	sunset := *payload.Sys.Sunset

	return weather.Report{
		TemperatureCelsius: weather.CelsiusFromKelvin(*payload.Main.Temp),
		Description:        *current.Description,
		HumidityPercent:    *payload.Main.Humidity,
		WindSpeedMS:        *payload.Wind.Speed,
		CityName:           *payload.Name,
		Sunrise:            time.Unix(sunrise, 0).In(loc),
		Sunset:             time.Unix(sunset, 0).In(loc),
		SunriseLocal:       weather.FormatClock(sunrise, loc),
		SunsetLocal:        weather.FormatClock(sunset, loc),
		IconCode:           current.Icon,
		IconURL:            weather.IconURL(iconBaseURL, current.Icon),
	}, nil
}
