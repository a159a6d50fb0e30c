package suggest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"weathersuggest/internal/store"
	"weathersuggest/internal/suggest"
)

// stubSource is a canned suggest.WeatherSource.
type stubSource struct {
	raw    suggest.RawWeather
	rawErr error
	aq     suggest.RawAirQuality
	aqErr  error

	airCalls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchWeather(ctx context.Context, city string) (suggest.RawWeather, error) {
	return s.raw, s.rawErr
}

func (s *stubSource) FetchAirQuality(ctx context.Context, lat, lon float64) (suggest.RawAirQuality, error) {
	s.airCalls++
	return s.aq, s.aqErr
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func goodRaw() suggest.RawWeather {
	return suggest.RawWeather{
		Description:       sptr("light rain"),
		TemperatureC:      fptr(19),
		HumidityPct:       iptr(60),
		WindSpeedMS:       fptr(4),
		Latitude:          fptr(28.61),
		Longitude:         fptr(77.21),
		TimezoneOffsetSec: 19800,
		SunriseUnix:       time.Now().Add(-4 * time.Hour).Unix(),
		SunsetUnix:        time.Now().Add(4 * time.Hour).Unix(),
	}
}

func newTestService(src suggest.WeatherSource) (*suggest.Service, *store.MemoryStore) {
	st := store.NewMemoryStore(50, 200)
	svc := suggest.NewService(src, nil, st, suggest.NewEngine(map[string]string{}), suggest.Config{
		UpstreamTimeout: 2 * time.Second,
	})
	return svc, st
}

func TestSuggestPersistsRecord(t *testing.T) {
	src := &stubSource{raw: goodRaw(), aq: suggest.RawAirQuality{Index: 2}}
	svc, st := newTestService(src)

	rec, err := svc.Suggest(context.Background(), "  delhi ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("record id was not assigned")
	}
	if rec.City != "Delhi" {
		t.Fatalf("city not canonicalized: %q", rec.City)
	}
	if rec.AQIValue != 75 || rec.AQILabel != suggest.AQIFair {
		t.Fatalf("aqi not mapped: (%d, %q)", rec.AQIValue, rec.AQILabel)
	}
	if rec.Suggestion == "" {
		t.Fatal("suggestion is empty")
	}
	if rec.OrderID != "" {
		t.Fatal("new records must not carry an order id")
	}

	// Round-trip through the store.
	found, err := st.FindByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found != rec {
		t.Fatalf("stored record differs: %+v vs %+v", found, rec)
	}
}

func TestSuggestRejectsEmptyCity(t *testing.T) {
	svc, _ := newTestService(&stubSource{raw: goodRaw()})

	if _, err := svc.Suggest(context.Background(), "   "); !errors.Is(err, suggest.ErrBadRequest) {
		t.Fatalf("got %v, want ErrBadRequest", err)
	}
}

func TestSuggestClassifiesUpstreamFailures(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(&stubSource{rawErr: errors.New("server error")})
	if _, err := svc.Suggest(ctx, "Delhi"); !errors.Is(err, suggest.ErrUpstreamError) {
		t.Fatalf("generic failure: got %v, want ErrUpstreamError", err)
	}

	svc, _ = newTestService(&stubSource{rawErr: context.DeadlineExceeded})
	if _, err := svc.Suggest(ctx, "Delhi"); !errors.Is(err, suggest.ErrUpstreamTimeout) {
		t.Fatalf("timeout: got %v, want ErrUpstreamTimeout", err)
	}

	svc, _ = newTestService(&stubSource{rawErr: suggest.ErrInvalidUpstreamData})
	if _, err := svc.Suggest(ctx, "Delhi"); !errors.Is(err, suggest.ErrInvalidUpstreamData) {
		t.Fatalf("bad payload: got %v, want ErrInvalidUpstreamData", err)
	}
}

// TestSuggestSurvivesAirQualityFailure verifies the pipeline substitutes
// the Moderate fallback when the air-quality lookup fails or cannot run.
func TestSuggestSurvivesAirQualityFailure(t *testing.T) {
	src := &stubSource{raw: goodRaw(), aqErr: errors.New("air pollution api down")}
	svc, _ := newTestService(src)

	rec, err := svc.Suggest(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.AQIValue != 125 || rec.AQILabel != suggest.AQIModerate {
		t.Fatalf("fallback aqi: (%d, %q)", rec.AQIValue, rec.AQILabel)
	}

	// No coordinates and no geocoder: the lookup is skipped entirely.
	raw := goodRaw()
	raw.Latitude, raw.Longitude = nil, nil
	src = &stubSource{raw: raw, aq: suggest.RawAirQuality{Index: 1}}
	svc, _ = newTestService(src)

	rec, err = svc.Suggest(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.airCalls != 0 {
		t.Fatal("air-quality lookup must be skipped without coordinates")
	}
	if rec.AQIValue != 125 || rec.AQILabel != suggest.AQIModerate {
		t.Fatalf("fallback aqi: (%d, %q)", rec.AQIValue, rec.AQILabel)
	}
}

func TestCheckoutByCityTagsLatestRecord(t *testing.T) {
	src := &stubSource{raw: goodRaw(), aq: suggest.RawAirQuality{Index: 2}}
	svc, st := newTestService(src)

	ctx := context.Background()
	first, err := svc.Suggest(ctx, "Delhi")
	if err != nil {
		t.Fatalf("first suggest: %v", err)
	}
	second, err := svc.Suggest(ctx, "Delhi")
	if err != nil {
		t.Fatalf("second suggest: %v", err)
	}

	orderID, rec, err := svc.Checkout(ctx, suggest.CheckoutSelector{City: "delhi"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(orderID, "ord-") {
		t.Fatalf("unexpected order token: %q", orderID)
	}
	if rec.ID != second.ID {
		t.Fatalf("checkout tagged record %d, want latest %d", rec.ID, second.ID)
	}
	if rec.OrderID != orderID {
		t.Fatalf("record order id %q, want %q", rec.OrderID, orderID)
	}

	// The older record stays untouched.
	older, err := st.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("find older: %v", err)
	}
	if older.OrderID != "" {
		t.Fatalf("older record was tagged: %q", older.OrderID)
	}
}

func TestCheckoutByIDOverwritesOrder(t *testing.T) {
	src := &stubSource{raw: goodRaw(), aq: suggest.RawAirQuality{Index: 2}}
	svc, _ := newTestService(src)

	ctx := context.Background()
	rec, err := svc.Suggest(ctx, "Delhi")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	firstOrder, _, err := svc.Checkout(ctx, suggest.CheckoutSelector{RecordID: rec.ID})
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	secondOrder, updated, err := svc.Checkout(ctx, suggest.CheckoutSelector{RecordID: rec.ID})
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	if firstOrder == secondOrder {
		t.Fatal("order tokens must be unique per checkout")
	}
	if updated.OrderID != secondOrder {
		t.Fatalf("last write must win: record has %q, want %q", updated.OrderID, secondOrder)
	}
}

func TestCheckoutUnknownSelector(t *testing.T) {
	svc, st := newTestService(&stubSource{raw: goodRaw()})
	ctx := context.Background()

	if _, _, err := svc.Checkout(ctx, suggest.CheckoutSelector{City: "Atlantis"}); !errors.Is(err, suggest.ErrNotFound) {
		t.Fatalf("unknown city: got %v, want ErrNotFound", err)
	}
	if _, _, err := svc.Checkout(ctx, suggest.CheckoutSelector{RecordID: 42}); !errors.Is(err, suggest.ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
	if _, _, err := svc.Checkout(ctx, suggest.CheckoutSelector{}); !errors.Is(err, suggest.ErrBadRequest) {
		t.Fatalf("empty selector: got %v, want ErrBadRequest", err)
	}

	// The store stays empty.
	recs, err := st.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("store changed by failed checkout: %d records", len(recs))
	}
}
