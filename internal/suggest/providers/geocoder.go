package providers

import (
	"github.com/kelvins/geocoder"
)

// GoogleGeocoder resolves city names to coordinates through the Google
// Geocoding API. kelvins/geocoder keys requests off a package-level API
// key, so construction sets it once.
type GoogleGeocoder struct{}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Locate implements suggest.Geocoder.
func (g *GoogleGeocoder) Locate(city string) (float64, float64, error) {
	loc, err := geocoder.Geocoding(geocoder.Address{City: city})
	if err != nil {
		return 0, 0, err
	}
	return loc.Latitude, loc.Longitude, nil
}
