package trip

import (
	"context"
	"log"
	"sync"
	"time"

	"tripmate/internal/resolve"
)

// Provider is one external data source normalized into a uniform fetch call.
// Implementations must never propagate a raw fault: every failure is
// classified into a FailureKind inside the returned ProviderResult.
type Provider interface {
	Name() ProviderName

	// Locations declares which place-name resolutions Fetch needs. The
	// orchestrator resolves them first and skips the fetch entirely when any
	// resolution fails, so adapters are never called with a bad identifier.
	Locations(req TripRequest) []resolve.Query

	// Fetch performs the outbound call(s) and returns the outcome. locs
	// carries the resolved locations in the order Locations declared them.
	Fetch(ctx context.Context, req TripRequest, locs []resolve.Location) ProviderResult
}

// LocationResolver maps a free-text place name into one identifier space.
// *resolve.Resolver satisfies it.
type LocationResolver interface {
	Resolve(ctx context.Context, place string, kind resolve.Kind) (resolve.Location, error)
}

// DefaultProviderTimeout bounds each provider call within one aggregate.
const DefaultProviderTimeout = 15 * time.Second

// Orchestrator fans one trip request out to the wanted providers, tolerates
// individual failures, and merges every outcome into a single TripContext.
// Providers are independent and rate-limited: each is called at most once per
// aggregate, one provider's failure never aborts another's call, and a slow
// provider is cut off at the per-provider timeout.
type Orchestrator struct {
	providers map[ProviderName]Provider
	resolver  LocationResolver
	timeout   time.Duration
}

// NewOrchestrator creates an Orchestrator over the given adapters. timeout <= 0
// falls back to DefaultProviderTimeout.
func NewOrchestrator(providers []Provider, resolver LocationResolver, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	byName := make(map[ProviderName]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Orchestrator{providers: byName, resolver: resolver, timeout: timeout}
}

// Aggregate queries every wanted provider concurrently and collects each
// outcome, success or failure, into the returned TripContext. It never fails
// as a whole: the worst case is a context where every entry is a Failure,
// which the synthesizer renders as a fully degraded itinerary. The result's
// key set always equals the deduplicated wanted set.
func (o *Orchestrator) Aggregate(ctx context.Context, req TripRequest, wanted []ProviderName) TripContext {
	tc := NewTripContext()
	if len(wanted) == 0 {
		return tc
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[ProviderName]bool, len(wanted))
	)

	for _, name := range wanted {
		if seen[name] {
			continue
		}
		seen[name] = true

		provider, ok := o.providers[name]
		if !ok {
			tc.Results[name] = Failed(FailureConfigurationMissing)
			continue
		}

		wg.Add(1)
		go func(name ProviderName, provider Provider) {
			defer wg.Done()
			res := o.callProvider(ctx, req, provider)
			if !res.OK() {
				log.Printf("provider %s failed: %s", name, res.Failure)
			}
			mu.Lock()
			tc.Results[name] = res
			mu.Unlock()
		}(name, provider)
	}

	wg.Wait()
	return tc
}

// callProvider resolves the provider's location needs and runs its fetch
// under the per-provider timeout. The timeout is a hard cancellation: an
// in-flight call that misses it is abandoned and its late result discarded.
func (o *Orchestrator) callProvider(ctx context.Context, req TripRequest, provider Provider) ProviderResult {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	queries := provider.Locations(req)
	locs := make([]resolve.Location, 0, len(queries))
	for _, q := range queries {
		if o.resolver == nil {
			return Failed(FailureUnresolvedLocation)
		}
		loc, err := o.resolver.Resolve(ctx, q.Place, q.Kind)
		if err != nil {
			return Failed(FailureUnresolvedLocation)
		}
		locs = append(locs, loc)
	}

	done := make(chan ProviderResult, 1)
	go func() {
		done <- provider.Fetch(ctx, req, locs)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Failed(FailureTransport)
	}
}
