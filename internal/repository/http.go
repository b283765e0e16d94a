package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
)

// newHTTPClient returns the first non-nil client, or one with the configured timeout.
func newHTTPClient(httpClient ...*http.Client) *http.Client {
	if len(httpClient) > 0 && httpClient[0] != nil {
		return httpClient[0]
	}
	return &http.Client{Timeout: config.GetHTTPClientTimeout()}
}

// getJSON issues a GET to endpoint with params and decodes a 200 body into out.
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, out interface{}) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return ErrLocationNotFound
		}
		return fmt.Errorf("%w: status %d", ErrExternalAPI, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
