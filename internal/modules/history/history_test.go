package history

import (
	"context"
	"strings"
	"testing"
	"time"

	"tripmate/internal/trip"
)

func fingerprintRequest() trip.TripRequest {
	return trip.TripRequest{
		FromCity:  "Delhi",
		ToCity:    "Goa",
		StartDate: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
		Travelers: 2,
		Budget:    20000,
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(fingerprintRequest())
	b := Fingerprint(fingerprintRequest())
	if a != b {
		t.Errorf("identical requests must share a fingerprint: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "itinerary:") {
		t.Errorf("fingerprint should be namespaced, got %s", a)
	}
}

func TestFingerprintDistinguishesParameters(t *testing.T) {
	base := Fingerprint(fingerprintRequest())

	variants := []func(*trip.TripRequest){
		func(r *trip.TripRequest) { r.ToCity = "Jaipur" },
		func(r *trip.TripRequest) { r.StartDate = r.StartDate.AddDate(0, 0, 1) },
		func(r *trip.TripRequest) { r.Travelers = 4 },
		func(r *trip.TripRequest) { r.Budget = 5000 },
	}

	for i, mutate := range variants {
		req := fingerprintRequest()
		mutate(&req)
		if Fingerprint(req) == base {
			t.Errorf("variant %d should change the fingerprint", i)
		}
	}
}

func TestCachedMarkdownWithoutRedis(t *testing.T) {
	s := NewStore(nil, nil)

	if _, ok, err := s.CachedMarkdown(context.Background(), "itinerary:abc"); ok || err != nil {
		t.Errorf("no cache client means a silent miss, got ok=%v err=%v", ok, err)
	}
	if err := s.CacheMarkdown(context.Background(), "itinerary:abc", "plan", time.Minute); err != nil {
		t.Errorf("cache write without a client is a no-op, got %v", err)
	}
}
