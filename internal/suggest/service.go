package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config carries the orchestration knobs. Everything the original service
// kept in process-wide globals lives here instead.
type Config struct {
	// UpstreamTimeout bounds each weather-source call. Defaults to 10s.
	UpstreamTimeout time.Duration
}

// Service composes the weather source, normalizer, rule engine and
// history store into the suggestion pipeline.
type Service struct {
	source   WeatherSource
	geocoder Geocoder // optional
	store    Store
	engine   *Engine
	timeout  time.Duration
	now      func() time.Time
}

// NewService creates a new Service. geocoder may be nil; without it the
// air-quality lookup relies on coordinates from the weather payload.
func NewService(source WeatherSource, geocoder Geocoder, store Store, engine *Engine, cfg Config) *Service {
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		source:   source,
		geocoder: geocoder,
		store:    store,
		engine:   engine,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Suggest runs the full pipeline for one city: fetch fresh data from the
// weather source, normalize, derive a suggestion, persist the record.
// A single upstream attempt per request; retries are an operational
// concern outside the core.
func (s *Service) Suggest(ctx context.Context, city string) (SuggestionRecord, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return SuggestionRecord{}, fmt.Errorf("%w: city must not be empty", ErrBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.source.FetchWeather(ctx, city)
	if err != nil {
		return SuggestionRecord{}, classifyUpstreamErr(err)
	}

	aq := s.lookupAirQuality(ctx, city, raw)

	reading, err := Normalize(city, raw, aq, s.now().UTC())
	if err != nil {
		return SuggestionRecord{}, err
	}

	rec := SuggestionRecord{
		WeatherReading: reading,
		Suggestion:     s.engine.Suggest(reading),
	}
	stored, err := s.store.Append(ctx, rec)
	if err != nil {
		return SuggestionRecord{}, err
	}
	return stored, nil
}

// lookupAirQuality returns nil when no coordinates can be determined or
// the lookup fails; the caller then substitutes the fallback reading.
func (s *Service) lookupAirQuality(ctx context.Context, city string, raw RawWeather) *RawAirQuality {
	lat, lon := raw.Latitude, raw.Longitude
	if lat == nil || lon == nil {
		if s.geocoder == nil {
			return nil
		}
		glat, glon, err := s.geocoder.Locate(city)
		if err != nil {
			log.Printf("INFO: geocoder lookup failed for %q: %v", city, err)
			return nil
		}
		lat, lon = &glat, &glon
	}

	aq, err := s.source.FetchAirQuality(ctx, *lat, *lon)
	if err != nil {
		log.Printf("INFO: air quality lookup failed for %q: %v", city, err)
		return nil
	}
	return &aq
}

// ListRecent delegates to the underlying store.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]SuggestionRecord, error) {
	return s.store.ListRecent(ctx, limit)
}

// CheckoutSelector identifies a record either directly by id or, as a
// fallback, by the most recent record for a city.
type CheckoutSelector struct {
	RecordID int64
	City     string
}

// Checkout tags a suggestion record with a fresh order identifier and
// returns the token together with the updated record. Repeated checkouts
// overwrite the previous token; the last write wins.
func (s *Service) Checkout(ctx context.Context, sel CheckoutSelector) (string, SuggestionRecord, error) {
	rec, err := s.resolveSelector(ctx, sel)
	if err != nil {
		return "", SuggestionRecord{}, err
	}

	orderID := newOrderID(s.now().UTC())
	updated, err := s.store.AttachOrder(ctx, rec.ID, orderID)
	if err != nil {
		return "", SuggestionRecord{}, err
	}
	return orderID, updated, nil
}

func (s *Service) resolveSelector(ctx context.Context, sel CheckoutSelector) (SuggestionRecord, error) {
	if sel.RecordID > 0 {
		return s.store.FindByID(ctx, sel.RecordID)
	}
	city := strings.TrimSpace(sel.City)
	if city == "" {
		return SuggestionRecord{}, fmt.Errorf("%w: checkout needs a record id or a city", ErrBadRequest)
	}
	return s.store.FindLatestByCity(ctx, CanonicalCity(city))
}

// newOrderID builds a time-derived token; the uuid tail keeps tokens
// unique when two checkouts land within the same second.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("ord-%s-%s", now.Format("20060102150405"), uuid.NewString()[:8])
}

// classifyUpstreamErr folds transport-level failures into the error
// taxonomy. Errors already carrying a taxonomy sentinel pass through.
func classifyUpstreamErr(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	case errors.Is(err, ErrInvalidUpstreamData),
		errors.Is(err, ErrUpstreamTimeout),
		errors.Is(err, ErrUpstreamError):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUpstreamError, err)
	}
}
