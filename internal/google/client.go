package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ghl-timezone-sync/pkg/models"
)

var (
	ErrNoAPIKey   = errors.New("google: API key not configured")
	ErrNoResults  = errors.New("google: no geocoding results")
	ErrStatus     = errors.New("google: non-OK status")
	ErrHTTPStatus = errors.New("google: unexpected HTTP status")
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Google Maps geocoding and time zone web services.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient HTTPClient
	now        func() time.Time
}

func NewClient(apiKey, baseURL string, timeout time.Duration, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// SetClock overrides the timestamp sent to the time zone API.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// Geocode returns the coordinates of the first result for address.
func (c *Client) Geocode(ctx context.Context, address string) (*models.Location, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	var result struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := c.get(ctx, "/maps/api/geocode/json", params, &result); err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("%w for %q (status %s)", ErrNoResults, address, result.Status)
	}

	first := result.Results[0]
	return &models.Location{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// TimeZone returns the zone in effect at the given coordinates right now, so
// the display name reflects daylight saving.
func (c *Client) TimeZone(ctx context.Context, lat, lng float64) (*models.ResolvedTimeZone, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	params.Set("key", c.apiKey)

	var result struct {
		TimeZoneID   string `json:"timeZoneId"`
		TimeZoneName string `json:"timeZoneName"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := c.get(ctx, "/maps/api/timezone/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != "OK" || result.TimeZoneID == "" {
		if result.ErrorMessage != "" {
			return nil, fmt.Errorf("%w %s: %s", ErrStatus, result.Status, result.ErrorMessage)
		}
		return nil, fmt.Errorf("%w %s", ErrStatus, result.Status)
	}

	return &models.ResolvedTimeZone{ID: result.TimeZoneID, Name: result.TimeZoneName}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing google response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
