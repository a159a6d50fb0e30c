package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weathersuggest/internal/suggest"
)

// OpenWeatherSource implements suggest.WeatherSource against the
// OpenWeatherMap current-weather and air-pollution APIs.
type OpenWeatherSource struct {
	name       string
	apiKey     string
	weatherURL string
	airURL     string
	rc         *resilientClient
}

func NewOpenWeatherSource(client *http.Client, apiKey string) *OpenWeatherSource {
	return &OpenWeatherSource{
		name:       "openweathermap",
		apiKey:     apiKey,
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		airURL:     "https://api.openweathermap.org/data/2.5/air_pollution",
		// Single attempt per request; the breaker still sheds load when
		// the upstream is failing.
		rc: newResilientClient(client, "openweathermap", BackoffConfig{
			MaxRetries:      0,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}),
	}
}

func (p *OpenWeatherSource) Name() string {
	return p.name
}

// FetchWeather requests current weather for the city, metric units.
func (p *OpenWeatherSource) FetchWeather(ctx context.Context, city string) (suggest.RawWeather, error) {
	if p.apiKey == "" {
		return suggest.RawWeather{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("q", city)

		u := fmt.Sprintf("%s?%s", p.weatherURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return suggest.RawWeather{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Coord *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Timezone int `json:"timezone"`
		Sys      struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return suggest.RawWeather{}, fmt.Errorf("%w: %v", suggest.ErrInvalidUpstreamData, err)
	}

	var raw suggest.RawWeather
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		raw.Description = &payload.Weather[0].Description
	}
	if payload.Main != nil {
		raw.TemperatureC = payload.Main.Temp
		raw.HumidityPct = payload.Main.Humidity
	}
	raw.WindSpeedMS = payload.Wind.Speed
	if payload.Coord != nil {
		raw.Latitude = &payload.Coord.Lat
		raw.Longitude = &payload.Coord.Lon
	}
	raw.TimezoneOffsetSec = payload.Timezone
	raw.SunriseUnix = payload.Sys.Sunrise
	raw.SunsetUnix = payload.Sys.Sunset

	return raw, nil
}

// FetchAirQuality requests the coarse 1..5 air-quality index for a coordinate.
func (p *OpenWeatherSource) FetchAirQuality(ctx context.Context, lat, lon float64) (suggest.RawAirQuality, error) {
	if p.apiKey == "" {
		return suggest.RawAirQuality{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))

		u := fmt.Sprintf("%s?%s", p.airURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return suggest.RawAirQuality{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return suggest.RawAirQuality{}, fmt.Errorf("%w: %v", suggest.ErrInvalidUpstreamData, err)
	}
	if len(payload.List) == 0 {
		return suggest.RawAirQuality{}, fmt.Errorf("%w: empty air quality response", suggest.ErrInvalidUpstreamData)
	}

	return suggest.RawAirQuality{Index: payload.List[0].Main.AQI}, nil
}
