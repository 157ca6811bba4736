package weather

import "github.com/i474232898/cityweather/internal/common"

// DefaultCity is queried when the user submits nothing and no other fallback
// is configured.
const DefaultCity = "London"

// NormalizeCity trims the submitted text. Blank or whitespace-only text is
// replaced by fallback, and by DefaultCity when fallback is blank too.
func NormalizeCity(text, fallback string) string {
	return common.FirstNonBlank(text, fallback, DefaultCity)
}
