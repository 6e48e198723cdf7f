package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"tripmate/internal/modules/history"
	"tripmate/internal/trip"
)

// Planner orchestrates the full conversation flow: parameter extraction,
// provider aggregation, and itinerary synthesis, with best-effort history
// persistence on top.
type Planner struct {
	extractor       *trip.Extractor
	orchestrator    *trip.Orchestrator
	synthesizer     *trip.Synthesizer
	history         *history.Service
	minFlightBudget float64
}

// NewPlanner creates a Planner. history may be nil when persistence is not
// configured; planning still works, nothing is saved.
func NewPlanner(
	extractor *trip.Extractor,
	orchestrator *trip.Orchestrator,
	synthesizer *trip.Synthesizer,
	hist *history.Service,
	minFlightBudget float64,
) *Planner {
	return &Planner{
		extractor:       extractor,
		orchestrator:    orchestrator,
		synthesizer:     synthesizer,
		history:         hist,
		minFlightBudget: minFlightBudget,
	}
}

// PlanFromMessage handles a free-form chat message end to end. Extraction
// failure is the only hard error; everything downstream degrades instead.
func (p *Planner) PlanFromMessage(ctx context.Context, message string) (trip.TripRequest, trip.ItineraryResult, error) {
	req, err := p.extractor.Extract(ctx, message)
	if err != nil {
		return trip.TripRequest{}, trip.ItineraryResult{}, err
	}

	wanted := trip.FilterByBudget(trip.WantedFromMessage(message), req.Budget, p.minFlightBudget)
	res := p.plan(ctx, req, wanted)
	return req, res, nil
}

// PlanTrip handles a structured request covering every provider the budget
// allows.
func (p *Planner) PlanTrip(ctx context.Context, req trip.TripRequest) (trip.ItineraryResult, error) {
	if err := req.Validate(); err != nil {
		return trip.ItineraryResult{}, err
	}
	wanted := trip.FilterByBudget(trip.AllProviders(), req.Budget, p.minFlightBudget)
	return p.plan(ctx, req, wanted), nil
}

func (p *Planner) plan(ctx context.Context, req trip.TripRequest, wanted []trip.ProviderName) trip.ItineraryResult {
	// A full-coverage request may already have a cached rendering.
	fullSet := len(wanted) == len(trip.AllProviders())
	if fullSet && p.history != nil {
		if markdown, ok := p.history.CachedMarkdown(ctx, req); ok {
			return trip.ItineraryResult{Markdown: markdown}
		}
	}

	tc := p.orchestrator.Aggregate(ctx, req, wanted)
	res := p.synthesizer.Synthesize(ctx, req, tc)

	if p.history != nil {
		if _, err := p.history.Save(ctx, req, res); err != nil {
			log.Printf("planner: history save failed: %v", err)
		}
	}
	return res
}

// Itinerary returns a previously saved itinerary.
func (p *Planner) Itinerary(ctx context.Context, id string) (*history.Itinerary, error) {
	if p.history == nil {
		return nil, history.ErrNotFound
	}
	parsed, err := parseItineraryID(id)
	if err != nil {
		return nil, err
	}
	return p.history.Get(ctx, parsed)
}

func parseItineraryID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: itinerary id %q", trip.ErrBadRequest, id)
	}
	return parsed, nil
}

// Itineraries lists recently saved itineraries, newest first.
func (p *Planner) Itineraries(ctx context.Context, limit int) ([]history.Itinerary, error) {
	if p.history == nil {
		return nil, nil
	}
	return p.history.List(ctx, limit)
}
