// README: Raw provider passthrough handlers (weather/hotels/trains/flights).
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/trip"
)

const providerQueryTimeout = 30 * time.Second

// Aggregator is the slice of the orchestrator the passthrough handlers need.
type Aggregator interface {
	Aggregate(ctx context.Context, req trip.TripRequest, wanted []trip.ProviderName) trip.TripContext
}

type ProviderHandler struct {
	aggregator Aggregator
}

func NewProviderHandler(aggregator Aggregator) *ProviderHandler {
	return &ProviderHandler{aggregator: aggregator}
}

// Weather handles GET /api/weather.
func (h *ProviderHandler) Weather(c *gin.Context) { h.query(c, trip.ProviderWeather) }

// Hotels handles GET /api/hotels.
func (h *ProviderHandler) Hotels(c *gin.Context) { h.query(c, trip.ProviderHotels) }

// Trains handles GET /api/trains.
func (h *ProviderHandler) Trains(c *gin.Context) { h.query(c, trip.ProviderTrains) }

// Flights handles GET /api/flights.
func (h *ProviderHandler) Flights(c *gin.Context) { h.query(c, trip.ProviderFlights) }

func (h *ProviderHandler) query(c *gin.Context, name trip.ProviderName) {
	travelers, _ := strconv.Atoi(c.DefaultQuery("travelers", "0"))
	budget, _ := strconv.ParseFloat(c.DefaultQuery("budget", "0"), 64)

	req, err := parseTripRequest(
		c.Query("from"), c.Query("to"),
		c.Query("start_date"), c.Query("end_date"),
		travelers, budget,
	)
	if err != nil {
		writeTripError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), providerQueryTimeout)
	defer cancel()

	tc := h.aggregator.Aggregate(ctx, req, []trip.ProviderName{name})
	res, ok := tc.Results[name]
	if !ok || !res.OK() {
		writeJSON(c, http.StatusBadGateway, gin.H{
			"provider": name,
			"failure":  res.Failure,
		})
		return
	}
	c.Data(http.StatusOK, "application/json", res.Data)
}
