package suggest

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AQILabel is the human-readable air-quality bucket paired with the
// numeric value. The two are always produced together by MapAQIIndex.
type AQILabel string

const (
	AQIGood     AQILabel = "Good"
	AQIFair     AQILabel = "Fair"
	AQIModerate AQILabel = "Moderate"
	AQIPoor     AQILabel = "Poor"
	AQIVeryPoor AQILabel = "Very Poor"
	AQIUnknown  AQILabel = "Unknown"
)

// WeatherReading is the canonical weather + air-quality snapshot for one
// city at one point in time, produced per request by the normalizer.
type WeatherReading struct {
	City         string   `json:"city"`
	Description  string   `json:"description"`
	TemperatureC float64  `json:"temperatureC"`
	HumidityPct  int      `json:"humidityPercent"`
	WindSpeedMS  float64  `json:"windSpeed"`
	AQIValue     int      `json:"aqiValue"`
	AQILabel     AQILabel `json:"aqiLabel"`
	IsNight      bool     `json:"isNight"`
}

// SuggestionRecord is a persisted reading plus its derived suggestion.
// Records are append-only; OrderID is the only field mutated after
// creation, and only by checkout.
type SuggestionRecord struct {
	ID int64 `json:"id"`
	WeatherReading
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"createdAt"` // always UTC
	OrderID    string    `json:"orderId,omitempty"`
}

// CanonicalCity normalizes a city name for storage and lookup, so
// "new york" and "NEW YORK" land on the same history rows.
func CanonicalCity(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return cases.Title(language.Und).String(name)
}
