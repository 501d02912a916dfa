package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ghl-timezone-sync/internal/cache"
	"ghl-timezone-sync/internal/config"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned for any CRM response with status >= 400.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s %s - %d %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client is a GoHighLevel API client authenticated with a static bearer token.
type Client struct {
	apiKey        string
	locationID    string
	baseURL       string
	apiVersion    string
	tzFieldID     string
	tzFieldLabel  string
	tzNameFieldID string
	timeout       time.Duration
	httpClient    HTTPClient
	fields        *cache.FieldIDCache
	strategies    []UpdateStrategy
}

func NewClient(cfg *config.Config, fields *cache.FieldIDCache, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if fields == nil {
		fields = cache.NewFieldIDCache()
	}
	return &Client{
		apiKey:        cfg.GHLAPIKey,
		locationID:    cfg.GHLLocationID,
		baseURL:       cfg.GHLBaseURL,
		apiVersion:    cfg.GHLAPIVersion,
		tzFieldID:     cfg.TZFieldID,
		tzFieldLabel:  cfg.TZFieldLabel,
		tzNameFieldID: cfg.TZNameFieldID,
		timeout:       cfg.HTTPTimeout,
		httpClient:    httpClient,
		fields:        fields,
		strategies:    DefaultStrategies(),
	}
}

// response is a completed CRM exchange. sendRequest returns it alongside an
// *APIError for statuses >= 400 so callers can branch on the code.
type response struct {
	StatusCode int
	Body       []byte
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body interface{}) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if c.locationID != "" {
		req.Header.Set("Location-Id", c.locationID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &response{StatusCode: resp.StatusCode, Body: respBody}
	if resp.StatusCode >= 400 {
		return out, &APIError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return out, nil
}

// Probe performs an authenticated read of the configured location and
// returns the raw status and body.
func (c *Client) Probe(ctx context.Context) (int, []byte, error) {
	resp, err := c.sendRequest(ctx, http.MethodGet, fmt.Sprintf("%s/locations/%s", c.baseURL, c.locationID), nil)
	if resp == nil {
		return 0, nil, err
	}
	// A rejected status is a result for the caller, so the *APIError is dropped.
	return resp.StatusCode, resp.Body, nil
}
