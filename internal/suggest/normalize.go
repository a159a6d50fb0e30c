package suggest

import (
	"fmt"
	"time"
)

// Substituted when the air-quality lookup is skipped or fails; the
// pipeline must never fail solely because air quality is unobtainable.
const (
	fallbackAQIValue = 125
	fallbackAQILabel = AQIModerate
)

// MapAQIIndex maps the provider's 1..5 air-quality index onto the
// 0-300-ish value scale together with its label. Out-of-range or missing
// indexes map to (0, Unknown).
func MapAQIIndex(index int) (int, AQILabel) {
	switch index {
	case 1:
		return 40, AQIGood
	case 2:
		return 75, AQIFair
	case 3:
		return 125, AQIModerate
	case 4:
		return 175, AQIPoor
	case 5:
		return 225, AQIVeryPoor
	default:
		return 0, AQIUnknown
	}
}

// Normalize turns raw provider payloads into a canonical WeatherReading.
// aq is nil when no air-quality data could be obtained; the reading then
// carries the Moderate fallback. Humidity and wind default to zero when
// the provider shape omits them.
func Normalize(city string, raw RawWeather, aq *RawAirQuality, now time.Time) (WeatherReading, error) {
	if raw.Description == nil || *raw.Description == "" || raw.TemperatureC == nil {
		return WeatherReading{}, fmt.Errorf("%w: payload missing condition description or temperature", ErrInvalidUpstreamData)
	}

	r := WeatherReading{
		City:         CanonicalCity(city),
		Description:  *raw.Description,
		TemperatureC: *raw.TemperatureC,
	}
	if raw.HumidityPct != nil {
		r.HumidityPct = *raw.HumidityPct
	}
	if raw.WindSpeedMS != nil {
		r.WindSpeedMS = *raw.WindSpeedMS
	}

	if aq != nil {
		r.AQIValue, r.AQILabel = MapAQIIndex(aq.Index)
	} else {
		r.AQIValue, r.AQILabel = fallbackAQIValue, fallbackAQILabel
	}

	r.IsNight = isNight(now, raw.SunriseUnix, raw.SunsetUnix, raw.TimezoneOffsetSec)
	return r, nil
}

// isNight shifts the UTC instants by the location's UTC offset and checks
// whether the local time falls outside the sunrise..sunset window.
// Without sunrise/sunset data we assume daytime.
func isNight(now time.Time, sunriseUnix, sunsetUnix int64, tzOffsetSec int) bool {
	if sunriseUnix == 0 || sunsetUnix == 0 {
		return false
	}
	offset := int64(tzOffsetSec)
	nowLocal := now.Unix() + offset
	sunriseLocal := sunriseUnix + offset
	sunsetLocal := sunsetUnix + offset
	return !(sunriseLocal <= nowLocal && nowLocal <= sunsetLocal)
}
