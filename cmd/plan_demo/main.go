package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"googlemaps.github.io/maps"

	"tripmate/internal/ai"
	"tripmate/internal/providers"
	"tripmate/internal/resolve"
	"tripmate/internal/service"
	"tripmate/internal/trip"
)

func main() {
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}
	mapsKey := os.Getenv("MAPS_API_KEY")
	if mapsKey == "" {
		log.Fatal("MAPS_API_KEY environment variable not set")
	}

	ctx := context.Background()
	gemini, err := ai.NewGemini(ctx, geminiKey)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	defer gemini.Close()

	mapsClient, err := maps.NewClient(maps.WithAPIKey(mapsKey))
	if err != nil {
		log.Fatalf("Failed to initialize Maps client: %v", err)
	}

	orchestrator := trip.NewOrchestrator([]trip.Provider{
		providers.NewWeather(os.Getenv("WEATHER_API_KEY"), "", nil),
		providers.NewHotels(os.Getenv("HOTELS_API_KEY"), "", nil),
		providers.NewTrains(os.Getenv("TRAINS_API_KEY"), "", nil),
		providers.NewFlights(os.Getenv("FLIGHTS_API_KEY"), "", nil),
	}, resolve.NewResolver(mapsClient, gemini), trip.DefaultProviderTimeout)

	planner := service.NewPlanner(
		trip.NewExtractor(gemini, nil),
		orchestrator,
		trip.NewSynthesizer(gemini),
		nil,
		0,
	)

	message := "Plan a trip from Delhi to Varanasi for 2 people with a budget of 15000"
	if len(os.Args) > 1 {
		message = strings.Join(os.Args[1:], " ")
	}
	fmt.Printf("User: %s\n\n", message)

	req, res, err := planner.PlanFromMessage(ctx, message)
	if err != nil {
		log.Fatalf("Error planning trip: %v", err)
	}

	fmt.Printf("Trip: %s -> %s, %s to %s, %d travelers, budget %.0f\n\n",
		req.FromCity, req.ToCity,
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"),
		req.Travelers, req.Budget)
	if res.Degraded {
		fmt.Printf("(degraded: missing %v)\n\n", res.Failed)
	}
	fmt.Println(res.Markdown)
}
