package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProviderName identifies one external data source.
type ProviderName string

const (
	ProviderWeather ProviderName = "weather"
	ProviderHotels  ProviderName = "hotels"
	ProviderTrains  ProviderName = "trains"
	ProviderFlights ProviderName = "flights"
)

// AllProviders lists every known provider in a stable order.
func AllProviders() []ProviderName {
	return []ProviderName{ProviderWeather, ProviderHotels, ProviderTrains, ProviderFlights}
}

// FailureKind classifies why a provider call or planning step failed.
type FailureKind string

const (
	// FailureConfigurationMissing means no credential was available for the provider.
	FailureConfigurationMissing FailureKind = "configuration_missing"
	// FailureTransport covers network errors and timeouts.
	FailureTransport FailureKind = "transport_error"
	// FailureUpstreamRejected means the upstream API answered with a non-success status.
	FailureUpstreamRejected FailureKind = "upstream_rejected"
	// FailureUnparsableResponse means the upstream payload did not match the expected schema.
	FailureUnparsableResponse FailureKind = "unparsable_response"
	// FailureUnresolvedLocation means a place name could not be mapped to a provider identifier.
	FailureUnresolvedLocation FailureKind = "unresolved_location"
	// FailureExtraction means the user message could not be turned into trip parameters.
	FailureExtraction FailureKind = "extraction_failed"
	// FailureSynthesis means the itinerary text could not be generated.
	FailureSynthesis FailureKind = "synthesis_failed"
)

var (
	ErrBadRequest       = errors.New("invalid trip request")
	ErrExtractionFailed = errors.New("could not extract trip parameters")
)

// TripRequest holds the structured parameters for one trip. It is created
// once per user interaction and never mutated afterwards.
type TripRequest struct {
	FromCity  string    `json:"from_city"`
	ToCity    string    `json:"to_city"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Travelers int       `json:"travelers"`
	Budget    float64   `json:"budget"`
}

// Validate checks the TripRequest invariants.
func (r TripRequest) Validate() error {
	switch {
	case r.FromCity == "":
		return fmt.Errorf("%w: missing origin city", ErrBadRequest)
	case r.ToCity == "":
		return fmt.Errorf("%w: missing destination city", ErrBadRequest)
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return fmt.Errorf("%w: missing travel dates", ErrBadRequest)
	case r.EndDate.Before(r.StartDate):
		return fmt.Errorf("%w: end date before start date", ErrBadRequest)
	case r.Travelers < 1:
		return fmt.Errorf("%w: traveler count must be at least 1", ErrBadRequest)
	case r.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", ErrBadRequest)
	}
	return nil
}

// Nights returns the number of nights between start and end date.
func (r TripRequest) Nights() int {
	n := int(r.EndDate.Sub(r.StartDate).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n
}

// ProviderResult is the tagged outcome of one provider call: either success
// carrying opaque data, or a classified failure. It is never partially filled.
type ProviderResult struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Failure FailureKind     `json:"failure,omitempty"`
}

// Success wraps provider data into a successful result.
func Success(data json.RawMessage) ProviderResult {
	return ProviderResult{Data: data}
}

// Failed builds a failure result of the given kind.
func Failed(kind FailureKind) ProviderResult {
	return ProviderResult{Failure: kind}
}

// OK reports whether the result carries data.
func (r ProviderResult) OK() bool {
	return r.Failure == ""
}

// TripContext maps each requested provider to its outcome. It is owned by the
// orchestrator while an aggregate is in flight and read-only afterwards.
type TripContext struct {
	Results map[ProviderName]ProviderResult `json:"results"`
}

// NewTripContext returns an empty context.
func NewTripContext() TripContext {
	return TripContext{Results: make(map[ProviderName]ProviderResult)}
}

// Degraded reports whether any provider failed.
func (c TripContext) Degraded() bool {
	for _, res := range c.Results {
		if !res.OK() {
			return true
		}
	}
	return false
}

// FailedProviders returns the providers whose result is a failure, in the
// stable AllProviders order.
func (c TripContext) FailedProviders() []ProviderName {
	var failed []ProviderName
	for _, name := range AllProviders() {
		if res, ok := c.Results[name]; ok && !res.OK() {
			failed = append(failed, name)
		}
	}
	return failed
}

// ItineraryResult is the final synthesized itinerary. Immutable once produced.
type ItineraryResult struct {
	Markdown string         `json:"markdown"`
	Degraded bool           `json:"degraded"`
	Failed   []ProviderName `json:"failed,omitempty"`
}
