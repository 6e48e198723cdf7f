// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/handlers"
	"tripmate/internal/http/middleware"
)

func NewRouter(planner handlers.Planner, aggregator handlers.Aggregator) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	planHandler := handlers.NewPlanHandler(planner)
	r.POST("/api/chat", planHandler.Chat)
	r.POST("/api/itinerary", planHandler.Plan)

	providerHandler := handlers.NewProviderHandler(aggregator)
	r.GET("/api/weather", providerHandler.Weather)
	r.GET("/api/hotels", providerHandler.Hotels)
	r.GET("/api/trains", providerHandler.Trains)
	r.GET("/api/flights", providerHandler.Flights)

	historyHandler := handlers.NewHistoryHandler(planner)
	r.GET("/api/itineraries/:id", historyHandler.Get)
	r.GET("/api/itineraries", historyHandler.List)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
