package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tripmate/internal/resolve"
	"tripmate/internal/trip"
)

const (
	defaultBookingBaseURL = "https://booking-com15.p.rapidapi.com"
	bookingHost           = "booking-com15.p.rapidapi.com"

	// maxHotelPages bounds pagination through the hotel search; upstream is
	// rate-limited and five pages already cover far more listings than the
	// itinerary uses.
	maxHotelPages = 5
)

// Hotels fetches ranked hotel listings for the destination from the
// booking-com15 RapidAPI. The destination id lookup is part of the same API
// and credential space, so the adapter performs it itself rather than going
// through the resolver.
type Hotels struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewHotels(apiKey, baseURL string, client *http.Client) *Hotels {
	if baseURL == "" {
		baseURL = defaultBookingBaseURL
	}
	return &Hotels{apiKey: apiKey, baseURL: baseURL, client: httpClientOrDefault(client)}
}

func (h *Hotels) Name() trip.ProviderName {
	return trip.ProviderHotels
}

func (h *Hotels) Locations(trip.TripRequest) []resolve.Query {
	return nil
}

func (h *Hotels) headers() map[string]string {
	return map[string]string{
		"x-rapidapi-key":  h.apiKey,
		"x-rapidapi-host": bookingHost,
	}
}

type destinationResponse struct {
	Status bool `json:"status"`
	Data   []struct {
		DestID string `json:"dest_id"`
		Name   string `json:"name"`
	} `json:"data"`
}

type hotelSearchResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Hotels []hotelItem `json:"hotels"`
		Meta   struct {
			PageNumber int `json:"page_number"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	} `json:"data"`
}

type hotelItem struct {
	AccessibilityLabel string `json:"accessibilityLabel"`
	Property           struct {
		Name                  string   `json:"name"`
		AccuratePropertyClass float64  `json:"accuratePropertyClass"`
		ReviewScore           float64  `json:"reviewScore"`
		ReviewScoreWord       string   `json:"reviewScoreWord"`
		ReviewCount           int      `json:"reviewCount"`
		PhotoURLs             []string `json:"photoUrls"`
		Longitude             float64  `json:"longitude"`
		Latitude              float64  `json:"latitude"`
		PriceBreakdown        struct {
			GrossPrice struct {
				Value float64 `json:"value"`
			} `json:"grossPrice"`
			ExcludedPrice struct {
				Value float64 `json:"value"`
			} `json:"excludedPrice"`
		} `json:"priceBreakdown"`
	} `json:"property"`
}

// hotelListing is one normalized hotel as serialized into the context.
type hotelListing struct {
	Name             string  `json:"name"`
	Rating           string  `json:"rating"`
	ReviewScore      string  `json:"review_score"`
	ReviewCount      int     `json:"review_count"`
	PriceInclTaxes   float64 `json:"price_incl_taxes"`
	FreeCancellation bool    `json:"free_cancellation"`
	NoPrepayment     bool    `json:"no_prepayment"`
	Photo            string  `json:"photo"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

func (h *Hotels) Fetch(ctx context.Context, req trip.TripRequest, _ []resolve.Location) trip.ProviderResult {
	if h.apiKey == "" {
		return trip.Failed(trip.FailureConfigurationMissing)
	}

	destID, kind := h.lookupDestination(ctx, req.ToCity)
	if kind != "" {
		return trip.Failed(kind)
	}

	var listings []hotelListing
	for page := 1; page <= maxHotelPages; page++ {
		params := url.Values{}
		params.Set("dest_id", destID)
		params.Set("search_type", "CITY")
		params.Set("adults", strconv.Itoa(req.Travelers))
		params.Set("room_qty", "1")
		params.Set("page_number", strconv.Itoa(page))
		params.Set("units", "metric")
		params.Set("languagecode", "en-us")
		params.Set("currency_code", "INR")
		params.Set("arrival_date", req.StartDate.Format(dateFormat))
		params.Set("departure_date", req.EndDate.Format(dateFormat))

		var resp hotelSearchResponse
		if kind := getJSON(ctx, h.client, h.baseURL+"/api/v1/hotels/searchHotels", h.headers(), params, &resp); kind != "" {
			// A mid-pagination fault degrades the whole provider rather than
			// returning a silently truncated listing.
			return trip.Failed(kind)
		}
		if len(resp.Data.Hotels) == 0 {
			break
		}

		for _, item := range resp.Data.Hotels {
			prop := item.Property
			price := prop.PriceBreakdown.GrossPrice.Value + prop.PriceBreakdown.ExcludedPrice.Value
			listings = append(listings, hotelListing{
				Name:             prop.Name,
				Rating:           fmt.Sprintf("%.1f out of 5", prop.AccuratePropertyClass),
				ReviewScore:      fmt.Sprintf("%.1f (%s)", prop.ReviewScore, prop.ReviewScoreWord),
				ReviewCount:      prop.ReviewCount,
				PriceInclTaxes:   price,
				FreeCancellation: strings.Contains(item.AccessibilityLabel, "Free cancellation"),
				NoPrepayment:     strings.Contains(item.AccessibilityLabel, "No prepayment"),
				Photo:            firstOrEmpty(prop.PhotoURLs),
				Latitude:         prop.Latitude,
				Longitude:        prop.Longitude,
			})
		}

		if resp.Data.Meta.TotalPages > 0 && resp.Data.Meta.PageNumber >= resp.Data.Meta.TotalPages {
			break
		}
	}

	if len(listings) == 0 {
		return trip.Failed(trip.FailureUnparsableResponse)
	}

	return marshalResult(map[string]any{
		"city":         req.ToCity,
		"total_hotels": len(listings),
		"hotels":       listings,
	})
}

func (h *Hotels) lookupDestination(ctx context.Context, city string) (string, trip.FailureKind) {
	params := url.Values{}
	params.Set("query", city)

	var resp destinationResponse
	if kind := getJSON(ctx, h.client, h.baseURL+"/api/v1/hotels/searchDestination", h.headers(), params, &resp); kind != "" {
		return "", kind
	}
	if !resp.Status || len(resp.Data) == 0 || resp.Data[0].DestID == "" {
		return "", trip.FailureUnresolvedLocation
	}
	return resp.Data[0].DestID, ""
}

func firstOrEmpty(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
