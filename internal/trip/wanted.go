package trip

import "strings"

// keywordTriggers maps message keywords to the provider they imply.
var keywordTriggers = map[ProviderName][]string{
	ProviderWeather: {"weather", "forecast", "rain", "temperature"},
	ProviderHotels:  {"hotel", "stay", "accommodation", "room"},
	ProviderTrains:  {"train", "rail"},
	ProviderFlights: {"flight", "fly", "airline"},
}

// fullSetTriggers are itinerary-intent keywords that imply every provider.
var fullSetTriggers = []string{"plan", "itinerary", "trip", "travel", "visit"}

// WantedFromMessage derives which providers a free-form message asks for.
// This is a replaceable policy, not an orchestrator concern: keyword presence
// selects individual providers, itinerary intent selects the full set, and a
// message matching nothing defaults to the full set so the user still gets a
// complete plan.
func WantedFromMessage(message string) []ProviderName {
	lower := strings.ToLower(message)

	for _, kw := range fullSetTriggers {
		if strings.Contains(lower, kw) {
			return AllProviders()
		}
	}

	want := make(map[ProviderName]bool)
	for name, keywords := range keywordTriggers {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				want[name] = true
				break
			}
		}
	}
	if len(want) == 0 {
		return AllProviders()
	}

	wanted := make([]ProviderName, 0, len(want))
	for _, name := range AllProviders() {
		if want[name] {
			wanted = append(wanted, name)
		}
	}
	return wanted
}

// FilterByBudget drops flights from the wanted set when the trip budget is
// below minFlightBudget. Fetching flight quotes nobody can book wastes a
// rate-limited call.
func FilterByBudget(wanted []ProviderName, budget, minFlightBudget float64) []ProviderName {
	if minFlightBudget <= 0 || budget >= minFlightBudget {
		return wanted
	}
	filtered := make([]ProviderName, 0, len(wanted))
	for _, name := range wanted {
		if name == ProviderFlights {
			continue
		}
		filtered = append(filtered, name)
	}
	return filtered
}
