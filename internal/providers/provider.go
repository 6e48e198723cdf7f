package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"tripmate/internal/trip"
)

// Each adapter in this package implements trip.Provider: Fetch never returns
// a Go error — every transport, parsing, and upstream fault is caught at the
// adapter boundary and classified into a trip.FailureKind. Adapters do not
// retry; retry and timeout policy belongs to the orchestrator.

const defaultTimeout = 10 * time.Second

// dateFormat is the wire format every upstream API takes for dates.
const dateFormat = "2006-01-02"

func httpClientOrDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}

// getJSON performs one GET request and decodes the JSON body into out.
// The returned kind is empty on success.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, params url.Values, out any) trip.FailureKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return trip.FailureTransport
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return trip.FailureTransport
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return trip.FailureTransport
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return trip.FailureUpstreamRejected
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return trip.FailureUnparsableResponse
	}

	return ""
}

// marshalResult wraps a normalized payload into a successful ProviderResult.
// Marshal failures are impossible for the map/struct shapes adapters build,
// but classify them anyway rather than panicking.
func marshalResult(payload any) trip.ProviderResult {
	data, err := json.Marshal(payload)
	if err != nil {
		return trip.Failed(trip.FailureUnparsableResponse)
	}
	return trip.Success(data)
}
