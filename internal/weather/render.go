package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Render maps a report onto the screen's display strings. It does no I/O.
func Render(r Report) RenderState {
	return RenderState{
		Temperature: fmt.Sprintf("%d°C", r.TemperatureCelsius),
		Description: r.Description,
		Humidity:    fmt.Sprintf("Humidity: %d%%", r.HumidityPercent),
		WindSpeed:   fmt.Sprintf("Wind Speed: %s m/s", formatDecimal(r.WindSpeedMS)),
		City:        r.CityName,
		SunTimes:    fmt.Sprintf("Sunrise: %s\nSunset: %s", r.SunriseLocal, r.SunsetLocal),
		IconURL:     r.IconURL,
	}
}

// formatDecimal prints the shortest representation of v that round-trips and
// keeps at least one fractional digit, so 3.1 stays "3.1" and 5 becomes "5.0".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
