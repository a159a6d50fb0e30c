package suggest

import (
	"weathersuggest/internal/common"
)

// Canned suggestion texts, one per rule.
const (
	msgHazardousAir = "Air quality is hazardous. Stay indoors, keep windows closed, and skip outdoor errands."
	msgThunderstorm = "Thunderstorms in the area. Stay indoors until the storm passes."
	msgWindRain     = "Heavy wind and rain. An umbrella will struggle; wear a raincoat if you must go out."
	msgRain         = "Rain expected. Carry an umbrella."
	msgSnow         = "Snowy conditions. Dress warmly and allow extra travel time."
	msgHeat         = "Dangerous heat. Stay hydrated and avoid the midday sun."
	msgCold         = "Cold outside. Wear extra layers."
	msgWind         = "Strong winds. Secure loose items and take care outdoors."
	msgMuggy        = "Clear but very humid. Expect muggy conditions outdoors."
	msgNightErrand  = "A warm night with acceptable air. Good window for evening errands."
	msgComfortable  = "Comfortable conditions. A great time for outdoor activities."
	msgCaution      = "Mixed conditions. Proceed with your plans, with a little caution."
)

// DefaultCityAdvisories are static supplementary notes appended to the
// chosen suggestion for cities that warrant them. They never change which
// rule fires.
var DefaultCityAdvisories = map[string]string{
	"Delhi":   "Air quality often worsens after sunset; check the AQI again before evening plans.",
	"Mumbai":  "Monsoon downpours can flood low-lying roads between June and September.",
	"Beijing": "Haze episodes can build quickly; a mask is worth carrying on poor-air days.",
	"London":  "Conditions change quickly; a compact umbrella is rarely wasted.",
}

// Engine derives an activity suggestion from a reading using an ordered
// rule table. Health-risk rules come before comfort rules, and the final
// catch-all guarantees every reading yields exactly one suggestion. The
// engine is deterministic: equal readings always produce equal output.
type Engine struct {
	advisories map[string]string
}

// NewEngine creates an Engine. A nil advisories map selects
// DefaultCityAdvisories; pass an empty map to disable notes.
func NewEngine(advisories map[string]string) *Engine {
	if advisories == nil {
		advisories = DefaultCityAdvisories
	}
	return &Engine{advisories: advisories}
}

// Suggest returns the suggestion for the reading, with the per-city
// advisory note appended when one exists.
func (e *Engine) Suggest(r WeatherReading) string {
	msg := ruleMessage(r)
	if note, ok := e.advisories[r.City]; ok {
		return msg + " Note: " + note
	}
	return msg
}

// ruleMessage evaluates the rule table in priority order and returns on
// the first match.
func ruleMessage(r WeatherReading) string {
	switch {
	case r.AQIValue >= 200 || r.AQILabel == AQIVeryPoor:
		return msgHazardousAir
	case common.HasAnyFold(r.Description, "thunderstorm"):
		return msgThunderstorm
	case common.HasAnyFold(r.Description, "rain", "drizzle"):
		if r.WindSpeedMS >= 10 {
			return msgWindRain
		}
		return msgRain
	case common.HasAnyFold(r.Description, "snow", "sleet"):
		return msgSnow
	case r.TemperatureC >= 40 || (r.TemperatureC >= 36 && r.HumidityPct >= 60):
		return msgHeat
	case r.TemperatureC <= 5:
		return msgCold
	case r.WindSpeedMS >= 14:
		return msgWind
	case r.HumidityPct >= 85 && common.HasAnyFold(r.Description, "clear"):
		return msgMuggy
	case r.IsNight && r.TemperatureC >= 28 && r.AQIValue <= 125:
		return msgNightErrand
	case r.AQIValue <= 125 && r.TemperatureC >= 18 && r.TemperatureC <= 32 && r.WindSpeedMS < 10:
		return msgComfortable
	default:
		return msgCaution
	}
}
