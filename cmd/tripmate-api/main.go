// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"googlemaps.github.io/maps"

	"tripmate/internal/ai"
	"tripmate/internal/config"
	httptransport "tripmate/internal/http"
	"tripmate/internal/infra"
	"tripmate/internal/modules/history"
	"tripmate/internal/providers"
	"tripmate/internal/resolve"
	"tripmate/internal/service"
	"tripmate/internal/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gemini, err := ai.NewGemini(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer gemini.Close()

	mapsClient, err := maps.NewClient(maps.WithAPIKey(cfg.Providers.MapsKey))
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}
	resolver := resolve.NewResolver(mapsClient, gemini)

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	redisClient := infra.NewRedis(cfg.Redis.Addr)

	historyStore := history.NewStore(dbPool, redisClient)
	historySvc := history.NewService(historyStore, cfg.Planning.CacheTTL)

	orchestrator := trip.NewOrchestrator([]trip.Provider{
		providers.NewWeather(cfg.Providers.WeatherKey, "", nil),
		providers.NewHotels(cfg.Providers.HotelsKey, "", nil),
		providers.NewTrains(cfg.Providers.TrainsKey, "", nil),
		providers.NewFlights(cfg.Providers.FlightsKey, "", nil),
	}, resolver, cfg.Providers.Timeout)

	planner := service.NewPlanner(
		trip.NewExtractor(gemini, nil),
		orchestrator,
		trip.NewSynthesizer(gemini),
		historySvc,
		cfg.Planning.MinFlightBudget,
	)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httptransport.NewRouter(planner, orchestrator),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
