package trip

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"tripmate/internal/ai"
)

// maxItineraryChars bounds the rendered itinerary. Anything past this is cut
// at the limit; the prompt already asks the model to stay concise.
const maxItineraryChars = 16000

// fallbackItinerary is returned when the model cannot produce any output.
// Synthesizer failures are masked, never surfaced to the caller.
const fallbackItinerary = "Sorry, the itinerary could not be generated right now. Please try again in a few minutes."

// unavailableNotices holds the fixed, literal sentence rendered for each
// failed provider. Free-form apologies are not allowed in degraded output.
var unavailableNotices = map[ProviderName]string{
	ProviderWeather: "no weather data found due to api limit exhausted",
	ProviderHotels:  "no hotel data found due to api limit exhausted",
	ProviderTrains:  "no train data found due to api limit exhausted",
	ProviderFlights: "no flight data found due to api limit exhausted",
}

// Synthesizer renders a TripContext into the final markdown itinerary with a
// single LLM call, retrying once on empty output.
type Synthesizer struct {
	llm ai.Client
}

func NewSynthesizer(llm ai.Client) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize builds the itinerary for the given request and aggregated
// provider data. It always returns a usable result: a degraded context still
// yields an itinerary carrying the fixed unavailability notices, and a failed
// or empty model reply yields the fixed fallback message.
func (s *Synthesizer) Synthesize(ctx context.Context, req TripRequest, tc TripContext) ItineraryResult {
	prompt := buildSynthesisPrompt(req, tc)
	failed := tc.FailedProviders()

	text, err := s.llm.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		text, err = s.llm.GenerateText(ctx, prompt)
	}
	if err != nil || strings.TrimSpace(text) == "" {
		return ItineraryResult{
			Markdown: withNotices(fallbackItinerary, failed),
			Degraded: true,
			Failed:   failed,
		}
	}

	text = strings.TrimSpace(text)
	if len(text) > maxItineraryChars {
		cut := maxItineraryChars
		// Back up to a rune boundary so the cap never splits a multi-byte
		// character.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return ItineraryResult{
		Markdown: withNotices(text, failed),
		Degraded: tc.Degraded(),
		Failed:   failed,
	}
}

// withNotices appends the fixed unavailability sentences for every failed
// provider, so degraded output always carries the literal notices no matter
// how the model handled its instructions.
func withNotices(markdown string, failed []ProviderName) string {
	if len(failed) == 0 {
		return markdown
	}
	var b strings.Builder
	b.WriteString(markdown)
	b.WriteString("\n\n### Data availability\n")
	for _, name := range failed {
		b.WriteString("\n- ")
		b.WriteString(unavailableNotices[name])
	}
	return b.String()
}

func buildSynthesisPrompt(req TripRequest, tc TripContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a travel assistant. Plan a detailed trip from %s to %s.
- Dates: %s to %s
- Travelers: %d
- Total budget: %.0f

`, req.FromCity, req.ToCity,
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"),
		req.Travelers, req.Budget)

	b.WriteString("Data gathered from travel services (JSON):\n\n")
	for _, name := range AllProviders() {
		res, ok := tc.Results[name]
		if !ok {
			continue
		}
		if res.OK() {
			fmt.Fprintf(&b, "%s:\n%s\n\n", name, res.Data)
		} else {
			fmt.Fprintf(&b, "%s: UNAVAILABLE. Where this data would appear, write exactly: \"%s\" and nothing else.\n\n", name, unavailableNotices[name])
		}
	}

	b.WriteString(`Write the itinerary in markdown with exactly these sections:
1. How to reach (best transport options with times and prices)
2. Hotel recommendations (top 3 by rating and value, with nightly price)
3. Day-by-day plan (places, timings, local travel, weather woven into each day)
4. What to pack
5. Budget breakdown (travel, stay, food, activities)

Rules:
- Use only the data above; never invent prices, trains, flights, or hotels.
- Keep it concise and skip disclaimers.
- Markdown only.`)

	return b.String()
}
