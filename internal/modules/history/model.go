// README: Saved itinerary model and request fingerprinting.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripmate/internal/trip"
)

// Itinerary is a rendered trip plan persisted for later retrieval.
type Itinerary struct {
	ID        uuid.UUID
	FromCity  string
	ToCity    string
	StartDate time.Time
	EndDate   time.Time
	Travelers int
	Budget    float64
	Markdown  string
	Degraded  bool
	CreatedAt time.Time
}

// Fingerprint derives a stable cache key from the trip parameters. Two
// requests with the same cities, dates, travelers, and budget share one entry.
func Fingerprint(req trip.TripRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%.2f",
		req.FromCity, req.ToCity,
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"),
		req.Travelers, req.Budget)
	return "itinerary:" + hex.EncodeToString(h.Sum(nil))
}
