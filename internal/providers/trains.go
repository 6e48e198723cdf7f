package providers

import (
	"context"
	"net/http"
	"net/url"

	"tripmate/internal/resolve"
	"tripmate/internal/trip"
)

const (
	defaultIRCTCBaseURL = "https://irctc1.p.rapidapi.com"
	irctcHost           = "irctc1.p.rapidapi.com"
)

// Trains fetches scheduled trains between the resolved station codes from the
// IRCTC RapidAPI, for both the outbound leg on the start date and the return
// leg on the end date.
type Trains struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTrains(apiKey, baseURL string, client *http.Client) *Trains {
	if baseURL == "" {
		baseURL = defaultIRCTCBaseURL
	}
	return &Trains{apiKey: apiKey, baseURL: baseURL, client: httpClientOrDefault(client)}
}

func (t *Trains) Name() trip.ProviderName {
	return trip.ProviderTrains
}

func (t *Trains) Locations(req trip.TripRequest) []resolve.Query {
	return []resolve.Query{
		{Place: req.FromCity, Kind: resolve.KindStation},
		{Place: req.ToCity, Kind: resolve.KindStation},
	}
}

type trainSearchResponse struct {
	Status bool `json:"status"`
	Data   []struct {
		TrainName   string   `json:"train_name"`
		TrainNumber string   `json:"train_number"`
		FromSTD     string   `json:"from_std"`
		ToSTD       string   `json:"to_std"`
		Duration    string   `json:"duration"`
		ClassType   []string `json:"class_type"`
	} `json:"data"`
}

// trainOption is one normalized scheduled train.
type trainOption struct {
	TrainName     string   `json:"train_name"`
	TrainNumber   string   `json:"train_number"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Duration      string   `json:"duration"`
	Classes       []string `json:"classes"`
}

type trainLeg struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Date   string        `json:"date"`
	Trains []trainOption `json:"trains"`
}

func (t *Trains) Fetch(ctx context.Context, req trip.TripRequest, locs []resolve.Location) trip.ProviderResult {
	if t.apiKey == "" {
		return trip.Failed(trip.FailureConfigurationMissing)
	}
	if len(locs) != 2 {
		return trip.Failed(trip.FailureUnresolvedLocation)
	}
	from, to := locs[0], locs[1]

	outbound, kind := t.search(ctx, from.Code, to.Code, req.StartDate.Format(dateFormat))
	if kind != "" {
		return trip.Failed(kind)
	}

	returning, kind := t.search(ctx, to.Code, from.Code, req.EndDate.Format(dateFormat))
	if kind != "" {
		return trip.Failed(kind)
	}

	return marshalResult(map[string]trainLeg{
		"outbound": {From: req.FromCity, To: req.ToCity, Date: req.StartDate.Format(dateFormat), Trains: outbound},
		"return":   {From: req.ToCity, To: req.FromCity, Date: req.EndDate.Format(dateFormat), Trains: returning},
	})
}

func (t *Trains) search(ctx context.Context, fromCode, toCode, date string) ([]trainOption, trip.FailureKind) {
	params := url.Values{}
	params.Set("fromStationCode", fromCode)
	params.Set("toStationCode", toCode)
	params.Set("dateOfJourney", date)

	headers := map[string]string{
		"x-rapidapi-key":  t.apiKey,
		"x-rapidapi-host": irctcHost,
	}

	var resp trainSearchResponse
	if kind := getJSON(ctx, t.client, t.baseURL+"/api/v3/trainBetweenStations", headers, params, &resp); kind != "" {
		return nil, kind
	}

	// An unsuccessful status with an otherwise valid body means no trains,
	// not an error; the synthesizer handles an empty list.
	options := make([]trainOption, 0, len(resp.Data))
	for _, item := range resp.Data {
		options = append(options, trainOption{
			TrainName:     item.TrainName,
			TrainNumber:   item.TrainNumber,
			DepartureTime: item.FromSTD,
			ArrivalTime:   item.ToSTD,
			Duration:      item.Duration,
			Classes:       item.ClassType,
		})
	}
	return options, ""
}
