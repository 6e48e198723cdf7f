// README: Saved itinerary read handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/history"
)

type HistoryHandler struct {
	planner Planner
}

func NewHistoryHandler(planner Planner) *HistoryHandler {
	return &HistoryHandler{planner: planner}
}

type itinerarySummary struct {
	ID        string  `json:"id"`
	FromCity  string  `json:"from_city"`
	ToCity    string  `json:"to_city"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Travelers int     `json:"travelers"`
	Budget    float64 `json:"budget"`
	Degraded  bool    `json:"degraded"`
	CreatedAt string  `json:"created_at"`
}

func toSummary(it history.Itinerary) itinerarySummary {
	return itinerarySummary{
		ID:        it.ID.String(),
		FromCity:  it.FromCity,
		ToCity:    it.ToCity,
		StartDate: it.StartDate.Format("2006-01-02"),
		EndDate:   it.EndDate.Format("2006-01-02"),
		Travelers: it.Travelers,
		Budget:    it.Budget,
		Degraded:  it.Degraded,
		CreatedAt: it.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Get handles GET /api/itineraries/:id.
func (h *HistoryHandler) Get(c *gin.Context) {
	it, err := h.planner.Itinerary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTripError(c, err)
		return
	}
	out := toSummary(*it)
	writeJSON(c, http.StatusOK, gin.H{
		"itinerary": out,
		"markdown":  it.Markdown,
	})
}

// List handles GET /api/itineraries.
func (h *HistoryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	items, err := h.planner.Itineraries(c.Request.Context(), limit)
	if err != nil {
		writeTripError(c, err)
		return
	}
	out := make([]itinerarySummary, 0, len(items))
	for _, it := range items {
		out = append(out, toSummary(it))
	}
	writeJSON(c, http.StatusOK, gin.H{"itineraries": out})
}
