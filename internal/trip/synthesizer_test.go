package trip

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func fullContext() TripContext {
	tc := NewTripContext()
	for _, name := range AllProviders() {
		tc.Results[name] = Success([]byte(`{"ok":true}`))
	}
	return tc
}

func failedContext() TripContext {
	tc := NewTripContext()
	for _, name := range AllProviders() {
		tc.Results[name] = Failed(FailureTransport)
	}
	return tc
}

func TestSynthesizeHealthyContext(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"## How to reach\nTake the train."}}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), fullContext())

	if res.Degraded {
		t.Error("healthy context should not be degraded")
	}
	if len(res.Failed) != 0 {
		t.Errorf("expected no failed providers, got %v", res.Failed)
	}
	if !strings.Contains(res.Markdown, "How to reach") {
		t.Errorf("model output should pass through, got %q", res.Markdown)
	}
	for _, notice := range unavailableNotices {
		if strings.Contains(res.Markdown, notice) {
			t.Errorf("healthy output must not carry %q", notice)
		}
	}
}

func TestSynthesizeDegradedCarriesFixedNotices(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"## Day-by-day plan\nWalk around."}}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), failedContext())

	if !res.Degraded {
		t.Error("context with failures must yield a degraded result")
	}
	if len(res.Failed) != 4 {
		t.Errorf("expected all 4 providers reported failed, got %v", res.Failed)
	}
	for name, notice := range unavailableNotices {
		if !strings.Contains(res.Markdown, notice) {
			t.Errorf("degraded output missing the %s notice %q", name, notice)
		}
	}
	if strings.Contains(res.Markdown, "transport_error") {
		t.Error("raw failure classifications must not leak into the itinerary")
	}
}

func TestSynthesizePromptMarksUnavailableProviders(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"plan"}}
	s := NewSynthesizer(llm)

	tc := fullContext()
	tc.Results[ProviderTrains] = Failed(FailureUpstreamRejected)
	s.Synthesize(context.Background(), aggRequest(), tc)

	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	if !strings.Contains(prompt, unavailableNotices[ProviderTrains]) {
		t.Error("prompt should instruct the fixed train notice")
	}
	if !strings.Contains(prompt, `{"ok":true}`) {
		t.Error("prompt should embed successful provider payloads")
	}
	if !strings.Contains(prompt, "Delhi") || !strings.Contains(prompt, "Goa") {
		t.Error("prompt should carry the trip parameters")
	}
}

func TestSynthesizeRetriesOnceThenFallsBack(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("model overloaded")}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), failedContext())

	if len(llm.prompts) != 2 {
		t.Errorf("expected exactly one retry, got %d calls", len(llm.prompts))
	}
	if !res.Degraded {
		t.Error("fallback output is degraded")
	}
	if !strings.Contains(res.Markdown, fallbackItinerary) {
		t.Errorf("expected the fixed fallback message, got %q", res.Markdown)
	}
	for _, notice := range unavailableNotices {
		if !strings.Contains(res.Markdown, notice) {
			t.Errorf("fallback output still carries the notices, missing %q", notice)
		}
	}
	if strings.Contains(res.Markdown, "model overloaded") {
		t.Error("the model error must not surface to the caller")
	}
}

func TestSynthesizeEmptyReplyThenSuccess(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"   ", "## Budget breakdown\nCheap."}}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), fullContext())

	if len(llm.prompts) != 2 {
		t.Errorf("empty reply should trigger a retry, got %d calls", len(llm.prompts))
	}
	if res.Degraded {
		t.Error("a successful retry is not degraded")
	}
	if !strings.Contains(res.Markdown, "Budget breakdown") {
		t.Errorf("expected the retry output, got %q", res.Markdown)
	}
}

func TestSynthesizeCapsItineraryLength(t *testing.T) {
	llm := &scriptedLLM{replies: []string{strings.Repeat("x", maxItineraryChars+500)}}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), fullContext())

	if len(res.Markdown) > maxItineraryChars {
		t.Errorf("itinerary should be capped at %d chars, got %d", maxItineraryChars, len(res.Markdown))
	}
}

func TestSynthesizeCapKeepsValidUTF8(t *testing.T) {
	// Three-byte runes guarantee the byte cap lands inside a character.
	llm := &scriptedLLM{replies: []string{strings.Repeat("日", maxItineraryChars/3+200)}}
	s := NewSynthesizer(llm)

	res := s.Synthesize(context.Background(), aggRequest(), fullContext())

	if len(res.Markdown) > maxItineraryChars {
		t.Errorf("itinerary should be capped at %d bytes, got %d", maxItineraryChars, len(res.Markdown))
	}
	if !utf8.ValidString(res.Markdown) {
		t.Error("truncation must not split a multi-byte character")
	}
}
