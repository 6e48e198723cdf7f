// README: History service persists generated itineraries and serves reads.
package history

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"tripmate/internal/trip"
)

var ErrNotFound = errors.New("itinerary not found")

const defaultListLimit = 20

type Service struct {
	store    *Store
	cacheTTL time.Duration
}

func NewService(store *Store, cacheTTL time.Duration) *Service {
	return &Service{store: store, cacheTTL: cacheTTL}
}

// Save persists a generated itinerary and, when the context was healthy,
// caches the rendered markdown under the request fingerprint. Degraded output
// is never cached so a later retry can produce a complete plan.
func (s *Service) Save(ctx context.Context, req trip.TripRequest, res trip.ItineraryResult) (uuid.UUID, error) {
	it := &Itinerary{
		ID:        uuid.New(),
		FromCity:  req.FromCity,
		ToCity:    req.ToCity,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Travelers: req.Travelers,
		Budget:    req.Budget,
		Markdown:  res.Markdown,
		Degraded:  res.Degraded,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, it); err != nil {
		return uuid.Nil, err
	}

	if !res.Degraded && s.cacheTTL > 0 {
		if err := s.store.CacheMarkdown(ctx, Fingerprint(req), res.Markdown, s.cacheTTL); err != nil {
			log.Printf("history: cache write failed: %v", err)
		}
	}
	return it.ID, nil
}

// CachedMarkdown returns a previously rendered itinerary for identical trip
// parameters, if one is still cached.
func (s *Service) CachedMarkdown(ctx context.Context, req trip.TripRequest) (string, bool) {
	v, ok, err := s.store.CachedMarkdown(ctx, Fingerprint(req))
	if err != nil {
		log.Printf("history: cache read failed: %v", err)
		return "", false
	}
	return v, ok
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Itinerary, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Itinerary, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	return s.store.List(ctx, limit)
}
