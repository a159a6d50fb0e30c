package suggest

import "context"

// RawWeather is a weather-source payload before normalization. Optional
// fields are pointers so missing data can be told apart from zero values;
// older provider shapes may omit humidity, wind, or coordinates.
type RawWeather struct {
	Description       *string
	TemperatureC      *float64
	HumidityPct       *int
	WindSpeedMS       *float64
	Latitude          *float64
	Longitude         *float64
	TimezoneOffsetSec int
	SunriseUnix       int64
	SunsetUnix        int64
}

// RawAirQuality is the paired air-pollution payload: a coarse 1..5 index.
type RawAirQuality struct {
	Index int
}

// WeatherSource abstracts the upstream weather/air-quality provider
// (e.g. OpenWeatherMap).
type WeatherSource interface {
	Name() string
	FetchWeather(ctx context.Context, city string) (RawWeather, error)
	FetchAirQuality(ctx context.Context, lat, lon float64) (RawAirQuality, error)
}

// Geocoder resolves a city name to coordinates when the weather payload
// carries none, so the air-quality lookup can still run.
type Geocoder interface {
	Locate(city string) (lat, lon float64, err error)
}

// Store is the contract the history store (sqlite, or the in-memory
// implementation used in tests) must satisfy. Implementations assign ids
// atomically and perform AttachOrder as a single keyed update.
type Store interface {
	Append(ctx context.Context, rec SuggestionRecord) (SuggestionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]SuggestionRecord, error)
	FindLatestByCity(ctx context.Context, city string) (SuggestionRecord, error)
	FindByID(ctx context.Context, id int64) (SuggestionRecord, error)
	AttachOrder(ctx context.Context, id int64, orderID string) (SuggestionRecord, error)
}
