// README: Chat and itinerary planning handlers.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/history"
	"tripmate/internal/trip"
)

// planTimeout bounds a full planning round including the synthesis call.
const planTimeout = 90 * time.Second

// Planner is the slice of the planning service the handlers need.
type Planner interface {
	PlanFromMessage(ctx context.Context, message string) (trip.TripRequest, trip.ItineraryResult, error)
	PlanTrip(ctx context.Context, req trip.TripRequest) (trip.ItineraryResult, error)
	Itinerary(ctx context.Context, id string) (*history.Itinerary, error)
	Itineraries(ctx context.Context, limit int) ([]history.Itinerary, error)
}

type PlanHandler struct {
	planner Planner
}

func NewPlanHandler(planner Planner) *PlanHandler {
	return &PlanHandler{planner: planner}
}

type chatReq struct {
	Message string `json:"message"`
}

type planResponse struct {
	FromCity  string   `json:"from_city"`
	ToCity    string   `json:"to_city"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Travelers int      `json:"travelers"`
	Budget    float64  `json:"budget"`
	Itinerary string   `json:"itinerary"`
	Degraded  bool     `json:"degraded"`
	Failed    []string `json:"failed_providers,omitempty"`
}

func toPlanResponse(req trip.TripRequest, res trip.ItineraryResult) planResponse {
	out := planResponse{
		FromCity:  req.FromCity,
		ToCity:    req.ToCity,
		StartDate: req.StartDate.Format("2006-01-02"),
		EndDate:   req.EndDate.Format("2006-01-02"),
		Travelers: req.Travelers,
		Budget:    req.Budget,
		Itinerary: res.Markdown,
		Degraded:  res.Degraded,
	}
	for _, name := range res.Failed {
		out.Failed = append(out.Failed, string(name))
	}
	return out
}

// Chat handles POST /api/chat.
func (h *PlanHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), planTimeout)
	defer cancel()

	tripReq, res, err := h.planner.PlanFromMessage(ctx, req.Message)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toPlanResponse(tripReq, res))
}

type itineraryReq struct {
	FromCity  string  `json:"from_city"`
	ToCity    string  `json:"to_city"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Travelers int     `json:"travelers"`
	Budget    float64 `json:"budget"`
}

// Plan handles POST /api/itinerary with structured trip parameters.
func (h *PlanHandler) Plan(c *gin.Context) {
	var req itineraryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	tripReq, err := parseTripRequest(req.FromCity, req.ToCity, req.StartDate, req.EndDate, req.Travelers, req.Budget)
	if err != nil {
		writeTripError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), planTimeout)
	defer cancel()

	res, err := h.planner.PlanTrip(ctx, tripReq)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toPlanResponse(tripReq, res))
}
