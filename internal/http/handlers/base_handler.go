// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/history"
	"tripmate/internal/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// parseTripRequest builds a validated TripRequest from structured fields.
// Dates are required here; unset travelers and budget get the standard
// defaults.
func parseTripRequest(fromCity, toCity, startDate, endDate string, travelers int, budget float64) (trip.TripRequest, error) {
	req := trip.TripRequest{
		FromCity:  strings.TrimSpace(fromCity),
		ToCity:    strings.TrimSpace(toCity),
		Travelers: travelers,
		Budget:    budget,
	}

	var err error
	if req.StartDate, err = time.Parse("2006-01-02", startDate); err != nil {
		return trip.TripRequest{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", trip.ErrBadRequest)
	}
	if req.EndDate, err = time.Parse("2006-01-02", endDate); err != nil {
		return trip.TripRequest{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", trip.ErrBadRequest)
	}
	if req.Travelers == 0 {
		req.Travelers = trip.DefaultTravelers
	}
	if req.Budget == 0 {
		req.Budget = trip.DefaultBudget
	}

	if err := req.Validate(); err != nil {
		return trip.TripRequest{}, err
	}
	return req, nil
}

func writeTripError(c *gin.Context, err error) {
	var extErr *trip.ExtractionError
	switch {
	case errors.Is(err, trip.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &extErr):
		// The unparsed model output travels with the error so API callers can
		// see what the model actually said.
		body := gin.H{"error": extErr.Error()}
		if extErr.Raw != "" {
			body["raw_output"] = extErr.Raw
		}
		writeJSON(c, http.StatusUnprocessableEntity, body)
	case errors.Is(err, trip.ErrExtractionFailed):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, history.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
