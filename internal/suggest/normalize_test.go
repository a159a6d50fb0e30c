package suggest

import (
	"errors"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func validRaw() RawWeather {
	return RawWeather{
		Description:       ptr("scattered clouds"),
		TemperatureC:      ptr(21.5),
		HumidityPct:       ptr(55),
		WindSpeedMS:       ptr(3.2),
		Latitude:          ptr(51.5),
		Longitude:         ptr(-0.12),
		TimezoneOffsetSec: 3600,
		SunriseUnix:       1700000000,
		SunsetUnix:        1700036000,
	}
}

func TestMapAQIIndex(t *testing.T) {
	tests := []struct {
		index     int
		wantValue int
		wantLabel AQILabel
	}{
		{1, 40, AQIGood},
		{2, 75, AQIFair},
		{3, 125, AQIModerate},
		{4, 175, AQIPoor},
		{5, 225, AQIVeryPoor},
		{0, 0, AQIUnknown},
		{6, 0, AQIUnknown},
		{-1, 0, AQIUnknown},
	}
	for _, tt := range tests {
		value, label := MapAQIIndex(tt.index)
		if value != tt.wantValue || label != tt.wantLabel {
			t.Errorf("MapAQIIndex(%d) = (%d, %q), want (%d, %q)", tt.index, value, label, tt.wantValue, tt.wantLabel)
		}
	}
}

func TestNormalizeRejectsIncompletePayload(t *testing.T) {
	now := time.Now().UTC()

	raw := validRaw()
	raw.Description = nil
	if _, err := Normalize("London", raw, nil, now); !errors.Is(err, ErrInvalidUpstreamData) {
		t.Fatalf("missing description: got %v, want ErrInvalidUpstreamData", err)
	}

	raw = validRaw()
	raw.TemperatureC = nil
	if _, err := Normalize("London", raw, nil, now); !errors.Is(err, ErrInvalidUpstreamData) {
		t.Fatalf("missing temperature: got %v, want ErrInvalidUpstreamData", err)
	}
}

// TestNormalizeDefaults verifies older provider shapes without humidity
// or wind do not break the pipeline.
func TestNormalizeDefaults(t *testing.T) {
	raw := validRaw()
	raw.HumidityPct = nil
	raw.WindSpeedMS = nil

	r, err := Normalize("London", raw, &RawAirQuality{Index: 2}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HumidityPct != 0 || r.WindSpeedMS != 0 {
		t.Fatalf("expected zero defaults, got humidity=%d wind=%f", r.HumidityPct, r.WindSpeedMS)
	}
	if r.AQIValue != 75 || r.AQILabel != AQIFair {
		t.Fatalf("aqi mapping: got (%d, %q)", r.AQIValue, r.AQILabel)
	}
}

// TestNormalizeAirQualityFallback verifies a skipped or failed lookup
// substitutes the Moderate fallback rather than failing.
func TestNormalizeAirQualityFallback(t *testing.T) {
	r, err := Normalize("London", validRaw(), nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.AQIValue != 125 || r.AQILabel != AQIModerate {
		t.Fatalf("fallback: got (%d, %q), want (125, Moderate)", r.AQIValue, r.AQILabel)
	}
}

func TestIsNight(t *testing.T) {
	sunrise := int64(1700000000)
	sunset := sunrise + 12*3600
	offset := 7200

	day := time.Unix(sunrise+6*3600, 0)
	if isNight(day, sunrise, sunset, offset) {
		t.Fatal("midday must not be night")
	}

	beforeSunrise := time.Unix(sunrise-3600, 0)
	if !isNight(beforeSunrise, sunrise, sunset, offset) {
		t.Fatal("pre-sunrise must be night")
	}

	afterSunset := time.Unix(sunset+3600, 0)
	if !isNight(afterSunset, sunrise, sunset, offset) {
		t.Fatal("post-sunset must be night")
	}

	// Without sunrise/sunset data we assume daytime.
	if isNight(afterSunset, 0, 0, offset) {
		t.Fatal("missing sun data must default to daytime")
	}
}

func TestCanonicalCity(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  new york  ", "New York"},
		{"LONDON", "London"},
		{"sÃO paulo", "São Paulo"},
		{"delhi", "Delhi"},
	}
	for _, tt := range tests {
		if got := CanonicalCity(tt.in); got != tt.want {
			t.Errorf("CanonicalCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
