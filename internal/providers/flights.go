package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tripmate/internal/resolve"
	"tripmate/internal/trip"
)

// Flights fetches airline-level flight options between the resolved airport
// codes from the booking-com15 RapidAPI, for both directions of the trip.
type Flights struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewFlights(apiKey, baseURL string, client *http.Client) *Flights {
	if baseURL == "" {
		baseURL = defaultBookingBaseURL
	}
	return &Flights{apiKey: apiKey, baseURL: baseURL, client: httpClientOrDefault(client)}
}

func (f *Flights) Name() trip.ProviderName {
	return trip.ProviderFlights
}

func (f *Flights) Locations(req trip.TripRequest) []resolve.Query {
	return []resolve.Query{
		{Place: req.FromCity, Kind: resolve.KindAirport},
		{Place: req.ToCity, Kind: resolve.KindAirport},
	}
}

type flightSearchResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Aggregation struct {
			Airlines []struct {
				Name     string      `json:"name"`
				IataCode string      `json:"iataCode"`
				LogoURL  string      `json:"logoUrl"`
				MinPrice flightPrice `json:"minPrice"`
			} `json:"airlines"`
			Stops []struct {
				NumberOfStops int         `json:"numberOfStops"`
				MinPrice      flightPrice `json:"minPrice"`
			} `json:"stops"`
		} `json:"aggregation"`
	} `json:"data"`
}

type flightPrice struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int64  `json:"nanos"`
}

func (p flightPrice) String() string {
	return fmt.Sprintf("%s %.2f", p.CurrencyCode, float64(p.Units)+float64(p.Nanos)/1e9)
}

// flightOption is one normalized airline-level option.
type flightOption struct {
	Airline   string     `json:"airline"`
	Iata      string     `json:"iata"`
	Logo      string     `json:"logo,omitempty"`
	MinPrice  string     `json:"min_price"`
	StopsInfo []stopInfo `json:"stops_info,omitempty"`
}

type stopInfo struct {
	Stops    int    `json:"stops"`
	MinPrice string `json:"min_price"`
}

type flightLeg struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Date    string         `json:"date"`
	Flights []flightOption `json:"flights"`
}

func (f *Flights) Fetch(ctx context.Context, req trip.TripRequest, locs []resolve.Location) trip.ProviderResult {
	if f.apiKey == "" {
		return trip.Failed(trip.FailureConfigurationMissing)
	}
	if len(locs) != 2 {
		return trip.Failed(trip.FailureUnresolvedLocation)
	}
	from, to := locs[0], locs[1]

	outbound, kind := f.search(ctx, from.Code, to.Code, req.StartDate.Format(dateFormat), req.Travelers)
	if kind != "" {
		return trip.Failed(kind)
	}

	returning, kind := f.search(ctx, to.Code, from.Code, req.EndDate.Format(dateFormat), req.Travelers)
	if kind != "" {
		return trip.Failed(kind)
	}

	return marshalResult(map[string]flightLeg{
		"outbound": {From: req.FromCity, To: req.ToCity, Date: req.StartDate.Format(dateFormat), Flights: outbound},
		"return":   {From: req.ToCity, To: req.FromCity, Date: req.EndDate.Format(dateFormat), Flights: returning},
	})
}

func (f *Flights) search(ctx context.Context, fromCode, toCode, date string, adults int) ([]flightOption, trip.FailureKind) {
	params := url.Values{}
	params.Set("fromId", fromCode+".AIRPORT")
	params.Set("toId", toCode+".AIRPORT")
	params.Set("departDate", date)
	params.Set("adults", strconv.Itoa(adults))
	params.Set("stops", "none")
	params.Set("pageNo", "1")
	params.Set("sort", "BEST")
	params.Set("cabinClass", "ECONOMY")
	params.Set("currency_code", "INR")

	headers := map[string]string{
		"x-rapidapi-key":  f.apiKey,
		"x-rapidapi-host": bookingHost,
	}

	var resp flightSearchResponse
	if kind := getJSON(ctx, f.client, f.baseURL+"/api/v1/flights/searchFlights", headers, params, &resp); kind != "" {
		return nil, kind
	}
	if !resp.Status {
		return nil, trip.FailureUpstreamRejected
	}

	stops := make([]stopInfo, 0, len(resp.Data.Aggregation.Stops))
	for _, s := range resp.Data.Aggregation.Stops {
		stops = append(stops, stopInfo{Stops: s.NumberOfStops, MinPrice: s.MinPrice.String()})
	}

	options := make([]flightOption, 0, len(resp.Data.Aggregation.Airlines))
	for _, airline := range resp.Data.Aggregation.Airlines {
		options = append(options, flightOption{
			Airline:   airline.Name,
			Iata:      airline.IataCode,
			Logo:      airline.LogoURL,
			MinPrice:  airline.MinPrice.String(),
			StopsInfo: stops,
		})
	}
	return options, ""
}
