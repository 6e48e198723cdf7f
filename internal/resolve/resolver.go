package resolve

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"googlemaps.github.io/maps"

	"tripmate/internal/ai"
)

// Kind selects the identifier space a place name is resolved into. Each
// provider needs a different one: flights want IATA codes, trains want rail
// station codes, weather wants coordinates.
type Kind string

const (
	KindGeo     Kind = "geo"
	KindAirport Kind = "airport"
	KindStation Kind = "station"
)

// Query names one resolution a provider needs before it can be fetched.
type Query struct {
	Place string
	Kind  Kind
}

// Location is a place name resolved into a provider-specific identifier.
// Code is set for airport/station kinds, Lat/Lng for geo.
type Location struct {
	Place string
	Kind  Kind
	Code  string
	Lat   float64
	Lng   float64
}

// ErrUnresolved is returned when a place name cannot be mapped to an
// identifier. Callers must not fetch with a guessed identifier.
var ErrUnresolved = errors.New("could not resolve location")

// Geocoder is the slice of the Google Maps client the resolver needs.
// *maps.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

var (
	iataRe    = regexp.MustCompile(`^[A-Z]{3}$`)
	stationRe = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

// cacheSize bounds the per-process resolution cache. Resolutions are cheap to
// redo, so a small LRU is enough to absorb repeat lookups within a burst of
// requests for the same cities.
const cacheSize = 64

// Resolver maps free-text place names to provider identifiers, using the
// Geocoding API for coordinates and a constrained LLM prompt for transport
// codes. Results are cached in a bounded LRU.
type Resolver struct {
	geo Geocoder
	llm ai.Client

	mu    sync.Mutex
	cache *lruCache
}

// NewResolver creates a Resolver. Either dependency may be nil, in which case
// resolutions needing it fail with ErrUnresolved.
func NewResolver(geo Geocoder, llm ai.Client) *Resolver {
	return &Resolver{
		geo:   geo,
		llm:   llm,
		cache: newLRUCache(cacheSize),
	}
}

// Resolve maps place into the identifier space selected by kind.
func (r *Resolver) Resolve(ctx context.Context, place string, kind Kind) (Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Location{}, fmt.Errorf("%w: empty place name", ErrUnresolved)
	}

	key := string(kind) + "|" + strings.ToLower(place)

	r.mu.Lock()
	if loc, ok := r.cache.get(key); ok {
		r.mu.Unlock()
		return loc, nil
	}
	r.mu.Unlock()

	var (
		loc Location
		err error
	)
	switch kind {
	case KindGeo:
		loc, err = r.geocode(ctx, place)
	case KindAirport:
		loc, err = r.codeViaLLM(ctx, place, kind)
	case KindStation:
		loc, err = r.codeViaLLM(ctx, place, kind)
	default:
		return Location{}, fmt.Errorf("%w: unknown kind %q", ErrUnresolved, kind)
	}
	if err != nil {
		return Location{}, err
	}

	r.mu.Lock()
	r.cache.put(key, loc)
	r.mu.Unlock()

	return loc, nil
}

func (r *Resolver) geocode(ctx context.Context, place string) (Location, error) {
	if r.geo == nil {
		return Location{}, fmt.Errorf("%w: no geocoder configured", ErrUnresolved)
	}

	results, err := r.geo.Geocode(ctx, &maps.GeocodingRequest{Address: place})
	if err != nil {
		return Location{}, fmt.Errorf("%w: geocoding %q: %v", ErrUnresolved, place, err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: no geocoding result for %q", ErrUnresolved, place)
	}

	coord := results[0].Geometry.Location
	return Location{Place: place, Kind: KindGeo, Lat: coord.Lat, Lng: coord.Lng}, nil
}

// codeViaLLM asks the model for exactly one short code and rejects any reply
// that fails the strict format check rather than guessing.
func (r *Resolver) codeViaLLM(ctx context.Context, place string, kind Kind) (Location, error) {
	if r.llm == nil {
		return Location{}, fmt.Errorf("%w: no LLM configured", ErrUnresolved)
	}

	var prompt string
	var valid *regexp.Regexp
	switch kind {
	case KindAirport:
		prompt = fmt.Sprintf("What is the main IATA airport code for %s? Reply with only the 3-letter code, nothing else.", place)
		valid = iataRe
	case KindStation:
		prompt = fmt.Sprintf("What is the main railway station code for %s? Reply with only the station code, nothing else.", place)
		valid = stationRe
	}

	reply, err := r.llm.GenerateText(ctx, prompt)
	if err != nil {
		return Location{}, fmt.Errorf("%w: code lookup for %q: %v", ErrUnresolved, place, err)
	}

	code := strings.ToUpper(strings.TrimSpace(ai.CleanJSON(reply)))
	if !valid.MatchString(code) {
		return Location{}, fmt.Errorf("%w: reply %q is not a valid %s code", ErrUnresolved, code, kind)
	}

	return Location{Place: place, Kind: kind, Code: code}, nil
}
