package weather

import (
	"time"
)

// Report is the set of values derived from one successful provider response.
// It is rebuilt on every query and never stored.
type Report struct {
	TemperatureCelsius int     `json:"temperatureCelsius"`
	Description        string  `json:"description"`
	HumidityPercent    int     `json:"humidityPercent"`
	WindSpeedMS        float64 `json:"windSpeedMetersPerSecond"`
	CityName           string  `json:"cityName"`

	Sunrise      time.Time `json:"sunrise"`
	Sunset       time.Time `json:"sunset"`
	SunriseLocal string    `json:"sunriseLocalTime"` // hh:mm AM/PM
	SunsetLocal  string    `json:"sunsetLocalTime"`

	IconCode string `json:"iconCode"`
	IconURL  string `json:"iconUrl"`
}

// RenderState holds the display strings for one report, one per output slot
// of the weather screen.
type RenderState struct {
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
	City        string `json:"city"`
	SunTimes    string `json:"sunTimes"`
	IconURL     string `json:"iconUrl"`
}
