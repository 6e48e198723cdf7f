package trip

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"tripmate/internal/resolve"
)

// mockProvider is a deterministic test adapter that counts its fetches.
type mockProvider struct {
	name   ProviderName
	result ProviderResult
	needs  []resolve.Query
	delay  time.Duration
	calls  atomic.Int64
}

func (m *mockProvider) Name() ProviderName {
	return m.name
}

func (m *mockProvider) Locations(TripRequest) []resolve.Query {
	return m.needs
}

func (m *mockProvider) Fetch(ctx context.Context, _ TripRequest, _ []resolve.Location) ProviderResult {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Failed(FailureTransport)
		}
	}
	return m.result
}

// mockResolver resolves everything except places listed in failPlaces.
type mockResolver struct {
	failPlaces map[string]bool
	calls      atomic.Int64
}

func (m *mockResolver) Resolve(_ context.Context, place string, kind resolve.Kind) (resolve.Location, error) {
	m.calls.Add(1)
	if m.failPlaces[place] {
		return resolve.Location{}, resolve.ErrUnresolved
	}
	return resolve.Location{Place: place, Kind: kind, Code: "XXX", Lat: 1, Lng: 2}, nil
}

func okProvider(name ProviderName) *mockProvider {
	return &mockProvider{name: name, result: Success([]byte(`{"ok":true}`))}
}

func failingProvider(name ProviderName) *mockProvider {
	return &mockProvider{name: name, result: Failed(FailureTransport)}
}

func aggRequest() TripRequest {
	return TripRequest{
		FromCity:  "Delhi",
		ToCity:    "Goa",
		StartDate: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
		Travelers: 2,
		Budget:    20000,
	}
}

func sortedKeys(tc TripContext) []ProviderName {
	keys := make([]ProviderName, 0, len(tc.Results))
	for name := range tc.Results {
		keys = append(keys, name)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func TestAggregateKeySetEqualsWanted(t *testing.T) {
	subsets := [][]ProviderName{
		{ProviderWeather},
		{ProviderWeather, ProviderHotels},
		{ProviderTrains, ProviderFlights, ProviderWeather},
		AllProviders(),
	}

	for _, wanted := range subsets {
		t.Run(fmt.Sprintf("%v", wanted), func(t *testing.T) {
			var provs []Provider
			for _, name := range AllProviders() {
				provs = append(provs, okProvider(name))
			}
			o := NewOrchestrator(provs, &mockResolver{}, time.Second)

			tc := o.Aggregate(context.Background(), aggRequest(), wanted)

			if len(tc.Results) != len(wanted) {
				t.Fatalf("expected %d entries, got %d (%v)", len(wanted), len(tc.Results), sortedKeys(tc))
			}
			for _, name := range wanted {
				if _, ok := tc.Results[name]; !ok {
					t.Errorf("missing entry for %s", name)
				}
			}
		})
	}
}

func TestAggregateSkipsUnwantedProviders(t *testing.T) {
	weather := okProvider(ProviderWeather)
	hotels := okProvider(ProviderHotels)
	o := NewOrchestrator([]Provider{weather, hotels}, &mockResolver{}, time.Second)

	o.Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderWeather})

	if hotels.calls.Load() != 0 {
		t.Errorf("hotels was not wanted but got %d calls", hotels.calls.Load())
	}
	if weather.calls.Load() != 1 {
		t.Errorf("weather should be called exactly once, got %d", weather.calls.Load())
	}
}

func TestAggregateDeduplicatesWanted(t *testing.T) {
	weather := okProvider(ProviderWeather)
	o := NewOrchestrator([]Provider{weather}, &mockResolver{}, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), []ProviderName{
		ProviderWeather, ProviderWeather, ProviderWeather,
	})

	if weather.calls.Load() != 1 {
		t.Errorf("expected exactly 1 fetch despite duplicate requests, got %d", weather.calls.Load())
	}
	if len(tc.Results) != 1 {
		t.Errorf("expected 1 entry, got %d", len(tc.Results))
	}
}

func TestAggregateEmptyWanted(t *testing.T) {
	weather := okProvider(ProviderWeather)
	o := NewOrchestrator([]Provider{weather}, &mockResolver{}, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), nil)

	if len(tc.Results) != 0 {
		t.Errorf("expected empty context, got %v", sortedKeys(tc))
	}
	if weather.calls.Load() != 0 {
		t.Errorf("no provider should be called for an empty wanted set")
	}
}

func TestAggregateAllProvidersFail(t *testing.T) {
	var provs []Provider
	for _, name := range AllProviders() {
		provs = append(provs, failingProvider(name))
	}
	o := NewOrchestrator(provs, &mockResolver{}, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), AllProviders())

	if len(tc.Results) != 4 {
		t.Fatalf("expected 4 entries even when everything fails, got %d", len(tc.Results))
	}
	if !tc.Degraded() {
		t.Error("context with only failures must be degraded")
	}
	for name, res := range tc.Results {
		if res.OK() {
			t.Errorf("%s should have failed", name)
		}
		if res.Failure != FailureTransport {
			t.Errorf("%s: expected transport_error, got %s", name, res.Failure)
		}
	}
}

func TestAggregateOneFailureDoesNotAbortOthers(t *testing.T) {
	weather := failingProvider(ProviderWeather)
	hotels := okProvider(ProviderHotels)
	o := NewOrchestrator([]Provider{weather, hotels}, &mockResolver{}, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderWeather, ProviderHotels})

	if tc.Results[ProviderWeather].OK() {
		t.Error("weather should have failed")
	}
	if !tc.Results[ProviderHotels].OK() {
		t.Error("hotels should have succeeded despite the weather failure")
	}
}

func TestAggregateTimeoutIsHardCancellation(t *testing.T) {
	slow := &mockProvider{name: ProviderTrains, result: Success([]byte(`{}`)), delay: 2 * time.Second}
	fast := okProvider(ProviderWeather)
	o := NewOrchestrator([]Provider{slow, fast}, &mockResolver{}, 100*time.Millisecond)

	start := time.Now()
	tc := o.Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderTrains, ProviderWeather})
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("aggregate should return at the timeout, took %v", elapsed)
	}
	if tc.Results[ProviderTrains].Failure != FailureTransport {
		t.Errorf("timed-out provider should record transport_error, got %+v", tc.Results[ProviderTrains])
	}
	if !tc.Results[ProviderWeather].OK() {
		t.Error("fast provider should not be affected by the slow one")
	}
}

func TestAggregateProvidersRunConcurrently(t *testing.T) {
	delay := 200 * time.Millisecond
	var provs []Provider
	for _, name := range AllProviders() {
		provs = append(provs, &mockProvider{name: name, result: Success([]byte(`{}`)), delay: delay})
	}
	o := NewOrchestrator(provs, &mockResolver{}, 2*time.Second)

	start := time.Now()
	o.Aggregate(context.Background(), aggRequest(), AllProviders())
	elapsed := time.Since(start)

	// Serial execution would take 4x the delay.
	if elapsed > 2*delay {
		t.Errorf("providers should run concurrently; 4 providers at %v each took %v", delay, elapsed)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	build := func() *Orchestrator {
		return NewOrchestrator([]Provider{
			okProvider(ProviderWeather),
			failingProvider(ProviderTrains),
		}, &mockResolver{}, time.Second)
	}

	first := build().Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderWeather, ProviderTrains})
	second := build().Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderWeather, ProviderTrains})

	if len(first.Results) != len(second.Results) {
		t.Fatalf("key sets differ: %d vs %d", len(first.Results), len(second.Results))
	}
	for name, res := range first.Results {
		other, ok := second.Results[name]
		if !ok {
			t.Errorf("second run missing %s", name)
			continue
		}
		if res.OK() != other.OK() || res.Failure != other.Failure {
			t.Errorf("%s classified differently across runs: %+v vs %+v", name, res, other)
		}
	}
}

func TestAggregateUnresolvedLocationSkipsFetch(t *testing.T) {
	flights := &mockProvider{
		name:   ProviderFlights,
		result: Success([]byte(`{}`)),
		needs:  []resolve.Query{{Place: "Nowhereville", Kind: resolve.KindAirport}},
	}
	resolver := &mockResolver{failPlaces: map[string]bool{"Nowhereville": true}}
	o := NewOrchestrator([]Provider{flights}, resolver, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderFlights})

	if tc.Results[ProviderFlights].Failure != FailureUnresolvedLocation {
		t.Errorf("expected unresolved_location, got %+v", tc.Results[ProviderFlights])
	}
	if flights.calls.Load() != 0 {
		t.Error("fetch must not run with an unresolved identifier")
	}
}

func TestAggregateUnknownProvider(t *testing.T) {
	o := NewOrchestrator(nil, &mockResolver{}, time.Second)

	tc := o.Aggregate(context.Background(), aggRequest(), []ProviderName{ProviderHotels})

	if tc.Results[ProviderHotels].Failure != FailureConfigurationMissing {
		t.Errorf("unregistered provider should record configuration_missing, got %+v", tc.Results[ProviderHotels])
	}
}
