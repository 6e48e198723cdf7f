package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tripmate/internal/ai"
)

// Defaults applied when the user message leaves a parameter unspecified.
const (
	DefaultTravelers = 2
	DefaultBudget    = 15000
	// defaultTripNights is added to the start date when no end date is given.
	defaultTripNights = 2
)

// ExtractionError reports that a user message could not be turned into trip
// parameters. Raw carries the unparsed model output for diagnostics.
type ExtractionError struct {
	Raw    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%v: %s", ErrExtractionFailed, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return ErrExtractionFailed
}

// Extractor turns a free-form user message into a structured TripRequest via
// an LLM call with a strict output-format contract, falling back to a naive
// pattern parser when the model is unreachable. It never substitutes a
// guessed request for unparsable model output.
type Extractor struct {
	llm ai.Client
	now func() time.Time
}

// NewExtractor creates an Extractor. now may be nil for the wall clock; tests
// inject a fixed reference clock.
func NewExtractor(llm ai.Client, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{llm: llm, now: now}
}

// extractedParams is the JSON schema the model is instructed to fill.
type extractedParams struct {
	FromCity  string  `json:"from_city"`
	ToCity    string  `json:"to_city"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Travelers int     `json:"travelers"`
	Budget    float64 `json:"budget"`
}

// Extract parses the user message into a TripRequest.
func (e *Extractor) Extract(ctx context.Context, message string) (TripRequest, error) {
	prompt := buildExtractionPrompt(message, e.now())

	raw, err := e.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		// The model is unreachable, not wrong: a naive pattern parse of the
		// message itself is still allowed.
		if req, ok := fallbackParse(message, e.now()); ok {
			return req, nil
		}
		return TripRequest{}, &ExtractionError{Reason: fmt.Sprintf("llm unavailable: %v", err)}
	}

	var params extractedParams
	if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &params); err != nil {
		return TripRequest{}, &ExtractionError{Raw: raw, Reason: "model reply is not valid JSON"}
	}

	req, err := e.buildRequest(params)
	if err != nil {
		return TripRequest{}, &ExtractionError{Raw: raw, Reason: err.Error()}
	}
	return req, nil
}

// buildRequest applies defaults, parses dates, and validates the invariants.
func (e *Extractor) buildRequest(params extractedParams) (TripRequest, error) {
	req := TripRequest{
		FromCity:  strings.TrimSpace(params.FromCity),
		ToCity:    strings.TrimSpace(params.ToCity),
		Travelers: params.Travelers,
		Budget:    params.Budget,
	}

	var err error
	if params.StartDate != "" {
		req.StartDate, err = time.Parse("2006-01-02", params.StartDate)
		if err != nil {
			return TripRequest{}, fmt.Errorf("start date %q is not YYYY-MM-DD", params.StartDate)
		}
	} else {
		req.StartDate = tomorrow(e.now())
	}

	if params.EndDate != "" {
		req.EndDate, err = time.Parse("2006-01-02", params.EndDate)
		if err != nil {
			return TripRequest{}, fmt.Errorf("end date %q is not YYYY-MM-DD", params.EndDate)
		}
	} else {
		req.EndDate = req.StartDate.AddDate(0, 0, defaultTripNights)
	}

	if req.Travelers == 0 {
		req.Travelers = DefaultTravelers
	}
	if req.Budget == 0 {
		req.Budget = DefaultBudget
	}

	if err := req.Validate(); err != nil {
		return TripRequest{}, err
	}
	return req, nil
}

func tomorrow(now time.Time) time.Time {
	t := now.AddDate(0, 0, 1)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func buildExtractionPrompt(message string, now time.Time) string {
	return fmt.Sprintf(`You extract structured trip parameters from a travel request.
Today's date is %s.

Return ONLY a JSON object with exactly these fields:
{
  "from_city": "origin city name, empty string if not mentioned",
  "to_city": "destination city name, empty string if not mentioned",
  "start_date": "YYYY-MM-DD, empty string if not mentioned",
  "end_date": "YYYY-MM-DD, empty string if not mentioned",
  "travelers": number of travelers, 0 if not mentioned,
  "budget": total budget as a plain number, 0 if not mentioned
}

Rules:
- Resolve relative dates ("tomorrow", "next weekend") against today's date.
- Dates must be YYYY-MM-DD. Never invent a city that is not in the message.
- No markdown, no explanation, JSON only.

User message: %s`, now.Format("2006-01-02"), message)
}

var (
	fallbackFromRe      = regexp.MustCompile(`\bfrom\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
	fallbackToRe        = regexp.MustCompile(`\bto\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
	fallbackDateRe      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	fallbackTravelersRe = regexp.MustCompile(`(?i)(\d+)\s+(?:people|persons|adults|travell?ers)`)
	fallbackBudgetRe    = regexp.MustCompile(`(?i)(?:budget\s+(?:of\s+)?|under\s+|₹\s*|rs\.?\s*)(\d+)`)
)

// fallbackParse is a best-effort pattern parser used only when the LLM call
// itself fails. It requires both cities to be present; everything else gets
// the standard defaults.
func fallbackParse(message string, now time.Time) (TripRequest, bool) {
	fromMatch := fallbackFromRe.FindStringSubmatch(message)
	toMatch := fallbackToRe.FindStringSubmatch(message)
	if fromMatch == nil || toMatch == nil {
		return TripRequest{}, false
	}

	req := TripRequest{
		FromCity:  fromMatch[1],
		ToCity:    toMatch[1],
		Travelers: DefaultTravelers,
		Budget:    DefaultBudget,
	}

	dates := fallbackDateRe.FindAllString(message, 2)
	if len(dates) > 0 {
		if start, err := time.Parse("2006-01-02", dates[0]); err == nil {
			req.StartDate = start
		}
	}
	if req.StartDate.IsZero() {
		req.StartDate = tomorrow(now)
	}
	if len(dates) > 1 {
		if end, err := time.Parse("2006-01-02", dates[1]); err == nil {
			req.EndDate = end
		}
	}
	if req.EndDate.IsZero() {
		req.EndDate = req.StartDate.AddDate(0, 0, defaultTripNights)
	}

	if m := fallbackTravelersRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			req.Travelers = n
		}
	}
	if m := fallbackBudgetRe.FindStringSubmatch(message); m != nil {
		if b, err := strconv.ParseFloat(m[1], 64); err == nil && b > 0 {
			req.Budget = b
		}
	}

	if req.Validate() != nil {
		return TripRequest{}, false
	}
	return req, true
}
