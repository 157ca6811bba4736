package weather

import (
	"fmt"
	"strings"
	"time"
)

const (
	kelvinOffset = 273.15

	// ClockLayout is the 12-hour "hh:mm AM/PM" layout used for sun times.
	ClockLayout = "03:04 PM"

	// DefaultIconBaseURL is where OpenWeatherMap serves condition icons.
	DefaultIconBaseURL = "https://openweathermap.org/img/wn"
)

// CelsiusFromKelvin converts a Kelvin reading to whole degrees Celsius,
// truncating toward zero.
func CelsiusFromKelvin(kelvin float64) int {
	return int(kelvin - kelvinOffset)
}

// FormatClock renders unix seconds as a 12-hour clock time in loc.
// A nil loc means time.Local.
func FormatClock(unixSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unixSeconds, 0).In(loc).Format(ClockLayout)
}

// IconURL builds the icon address for an icon code, e.g. "01d".
func IconURL(baseURL, code string) string {
	if baseURL == "" {
		baseURL = DefaultIconBaseURL
	}
	return fmt.Sprintf("%s/%s.png", strings.TrimRight(baseURL, "/"), code)
}
