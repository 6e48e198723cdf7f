package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tripmate/internal/resolve"
	"tripmate/internal/trip"
)

const defaultWeatherBaseURL = "https://weather.googleapis.com"

// forecastDays is how far ahead the upstream forecast reaches.
const forecastDays = 10

// Weather fetches a day-indexed forecast for the destination from the Google
// Weather API, keyed by the resolved geocoordinate.
type Weather struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWeather creates the weather adapter. baseURL may be empty for the
// production endpoint; tests point it at a local server.
func NewWeather(apiKey, baseURL string, client *http.Client) *Weather {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	return &Weather{apiKey: apiKey, baseURL: baseURL, client: httpClientOrDefault(client)}
}

func (w *Weather) Name() trip.ProviderName {
	return trip.ProviderWeather
}

func (w *Weather) Locations(req trip.TripRequest) []resolve.Query {
	return []resolve.Query{{Place: req.ToCity, Kind: resolve.KindGeo}}
}

// Upstream forecast payload, trimmed to the fields the itinerary needs.
type weatherResponse struct {
	ForecastDays []forecastDay `json:"forecastDays"`
	TimeZone     struct {
		ID string `json:"id"`
	} `json:"timeZone"`
}

type forecastDay struct {
	DisplayDate struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"displayDate"`
	DaytimeForecast   dayPartForecast `json:"daytimeForecast"`
	NighttimeForecast dayPartForecast `json:"nighttimeForecast"`
	MaxTemperature    struct {
		Degrees float64 `json:"degrees"`
	} `json:"maxTemperature"`
	MinTemperature struct {
		Degrees float64 `json:"degrees"`
	} `json:"minTemperature"`
	SunEvents struct {
		SunriseTime time.Time `json:"sunriseTime"`
		SunsetTime  time.Time `json:"sunsetTime"`
	} `json:"sunEvents"`
}

type dayPartForecast struct {
	WeatherCondition struct {
		Description struct {
			Text string `json:"text"`
		} `json:"description"`
	} `json:"weatherCondition"`
	RelativeHumidity int `json:"relativeHumidity"`
	Precipitation    struct {
		Probability struct {
			Percent int `json:"percent"`
		} `json:"probability"`
	} `json:"precipitation"`
}

// daySummary is one normalized forecast day as serialized into the context.
type daySummary struct {
	ConditionDay   string  `json:"condition_day"`
	ConditionNight string  `json:"condition_night"`
	MaxTemp        float64 `json:"max_temp"`
	MinTemp        float64 `json:"min_temp"`
	HumidityDay    int     `json:"humidity_day"`
	HumidityNight  int     `json:"humidity_night"`
	RainChance     int     `json:"rain_chance"`
	Sunrise        string  `json:"sunrise"`
	Sunset         string  `json:"sunset"`
}

func (w *Weather) Fetch(ctx context.Context, req trip.TripRequest, locs []resolve.Location) trip.ProviderResult {
	if w.apiKey == "" {
		return trip.Failed(trip.FailureConfigurationMissing)
	}
	if len(locs) != 1 || locs[0].Kind != resolve.KindGeo {
		return trip.Failed(trip.FailureUnresolvedLocation)
	}
	coord := locs[0]

	params := url.Values{}
	params.Set("key", w.apiKey)
	params.Set("location.latitude", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("location.longitude", strconv.FormatFloat(coord.Lng, 'f', -1, 64))
	params.Set("days", strconv.Itoa(forecastDays))

	var resp weatherResponse
	if kind := getJSON(ctx, w.client, w.baseURL+"/v1/forecast/days:lookup", nil, params, &resp); kind != "" {
		return trip.Failed(kind)
	}
	if len(resp.ForecastDays) == 0 {
		return trip.Failed(trip.FailureUnparsableResponse)
	}

	loc, err := time.LoadLocation(resp.TimeZone.ID)
	if err != nil {
		loc = time.UTC
	}

	byDate := make(map[string]forecastDay, len(resp.ForecastDays))
	for _, day := range resp.ForecastDays {
		key := fmt.Sprintf("%04d-%02d-%02d", day.DisplayDate.Year, day.DisplayDate.Month, day.DisplayDate.Day)
		byDate[key] = day
	}

	// Index the forecast Day 1..N over the trip's date range. Days past the
	// forecast horizon are marked unavailable rather than dropped, so the
	// day-by-day plan keeps its numbering.
	forecast := make(map[string]any)
	counter := 1
	for d := req.StartDate; !d.After(req.EndDate); d = d.AddDate(0, 0, 1) {
		key := "Day " + strconv.Itoa(counter)
		if day, ok := byDate[d.Format(dateFormat)]; ok {
			forecast[key] = daySummary{
				ConditionDay:   day.DaytimeForecast.WeatherCondition.Description.Text,
				ConditionNight: day.NighttimeForecast.WeatherCondition.Description.Text,
				MaxTemp:        day.MaxTemperature.Degrees,
				MinTemp:        day.MinTemperature.Degrees,
				HumidityDay:    day.DaytimeForecast.RelativeHumidity,
				HumidityNight:  day.NighttimeForecast.RelativeHumidity,
				RainChance:     day.DaytimeForecast.Precipitation.Probability.Percent,
				Sunrise:        day.SunEvents.SunriseTime.In(loc).Format("03:04 PM"),
				Sunset:         day.SunEvents.SunsetTime.In(loc).Format("03:04 PM"),
			}
		} else {
			forecast[key] = "weather data not available for this day"
		}
		counter++
	}

	return marshalResult(forecast)
}
