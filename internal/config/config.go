package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/cityweather/internal/icon"
	"github.com/i474232898/cityweather/internal/weather"
	"github.com/i474232898/cityweather/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey  string `validate:"required"`
	OpenWeatherBaseURL string `validate:"required,url"`
	IconBaseURL        string `validate:"required,url"`

	// DefaultCity is queried for blank input and when a screen opens.
	DefaultCity string `validate:"required"`

	// HTTPTimeout bounds every outbound call; FetchTimeout bounds one query.
	HTTPTimeout  time.Duration `validate:"gt=0"`
	FetchTimeout time.Duration `validate:"gt=0"`

	// Location is the zone sunrise and sunset are shown in.
	Location *time.Location `validate:"-"`

	IconWidth     int `validate:"gt=0"`
	IconHeight    int `validate:"gt=0"`
	IconCacheSize int `validate:"gt=0"`

	// Screen registry limits.
	MaxScreens      int           `validate:"gte=0"` // 0 = unlimited
	ScreenIdleTTL   time.Duration `validate:"gte=0"` // 0 = never evict
	JanitorInterval time.Duration `validate:"gt=0"`

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)
	cfg.IconBaseURL = getenvDefault("OPENWEATHER_ICON_BASE_URL", weather.DefaultIconBaseURL)
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", weather.DefaultCity)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.Location = time.Local
	if tz := os.Getenv("DISPLAY_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	cfg.IconWidth = getenvInt("ICON_WIDTH", icon.DefaultWidth)
	cfg.IconHeight = getenvInt("ICON_HEIGHT", icon.DefaultHeight)
	cfg.IconCacheSize = getenvInt("ICON_CACHE_SIZE", 64)

	cfg.MaxScreens = getenvInt("MAX_SCREENS", 1000)
	if cfg.ScreenIdleTTL, err = getenvDuration("SCREEN_IDLE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = getenvDuration("JANITOR_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
