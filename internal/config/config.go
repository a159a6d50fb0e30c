package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string

	// GeocoderAPIKey enables the city-to-coordinates fallback for the
	// air-quality lookup; optional.
	GeocoderAPIKey string

	// DBPath locates the sqlite history database.
	DBPath string

	// UpstreamTimeout bounds each weather-source request.
	UpstreamTimeout time.Duration

	// Listing limits: default when unspecified, hard clamp otherwise.
	ListDefaultLimit int
	ListMaxLimit     int

	// Optional periodic suggestion refresh.
	TrackCities   []string
	TrackInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.DBPath = getenvDefault("DB_PATH", "suggestions.db")

	timeoutStr := getenvDefault("UPSTREAM_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}
	cfg.UpstreamTimeout = timeout

	cfg.ListDefaultLimit = getenvInt("LIST_DEFAULT_LIMIT", 50)
	cfg.ListMaxLimit = getenvInt("LIST_MAX_LIMIT", 200)

	if cities := os.Getenv("TRACK_CITIES"); cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.TrackCities = append(cfg.TrackCities, c)
			}
		}
	}

	intervalStr := getenvDefault("TRACK_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACK_INTERVAL: %w", err)
	}
	cfg.TrackInterval = interval

	cfg.Port = getenvDefault("PORT", "8080")

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
