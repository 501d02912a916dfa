package ghl

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"ghl-timezone-sync/internal/cache"
)

const tzFieldKey = "tz"

var ErrFieldNotFound = errors.New("ghl: custom field not found")

// fieldListContainers are the keys a custom field listing has been seen
// under, depending on the endpoint that served it.
var fieldListContainers = []string{"customFields", "fields", "data"}

type customField struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (f customField) id() string {
	if f.ID != "" {
		return f.ID
	}
	return f.AltID
}

// fieldListURLs returns the listing endpoint shapes in the order they are
// tried.
func (c *Client) fieldListURLs() []string {
	loc := url.PathEscape(c.locationID)
	return []string{
		c.baseURL + "/locations/" + loc + "/customFields",
		c.baseURL + "/locations/" + loc + "/custom-fields",
		c.baseURL + "/custom-fields/?locationId=" + url.QueryEscape(c.locationID),
	}
}

// TimeZoneFieldID returns the id of the "Time Zone" custom field. A fixed id
// from configuration wins; otherwise the field is discovered by label once
// and the result, including a miss, is cached.
func (c *Client) TimeZoneFieldID(ctx context.Context) (string, error) {
	if c.tzFieldID != "" {
		return c.tzFieldID, nil
	}

	if cached, ok := c.fields.Get(tzFieldKey); ok {
		if !cached.Found {
			return "", ErrFieldNotFound
		}
		return cached.ID, nil
	}

	id := c.discoverField(ctx, c.tzFieldLabel)
	if id == "" {
		log.Printf("Custom field %q not found; updates will set the contact timezone only", c.tzFieldLabel)
		c.fields.Set(tzFieldKey, cache.FieldID{})
		return "", ErrFieldNotFound
	}

	log.Printf("Resolved custom field %q to %s", c.tzFieldLabel, id)
	c.fields.Set(tzFieldKey, cache.FieldID{ID: id, Found: true})
	return id, nil
}

func (c *Client) discoverField(ctx context.Context, label string) string {
	if c.locationID == "" {
		return ""
	}

	for _, u := range c.fieldListURLs() {
		resp, err := c.sendRequest(ctx, http.MethodGet, u, nil)
		if resp == nil {
			log.Printf("Error listing custom fields at %s: %v", u, err)
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			continue
		}
		if err != nil {
			log.Printf("Error listing custom fields at %s: %v", u, err)
			return ""
		}
		return matchField(resp.Body, label)
	}
	return ""
}

// matchField scans every known container in body for a field whose name or
// label equals label, ignoring case.
func matchField(body []byte, label string) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("Error parsing custom field listing: %v", err)
		return ""
	}

	for _, key := range fieldListContainers {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var fields []customField
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		for _, f := range fields {
			if strings.EqualFold(strings.TrimSpace(f.Name), label) || strings.EqualFold(strings.TrimSpace(f.Label), label) {
				if id := f.id(); id != "" {
					return id
				}
			}
		}
	}
	return ""
}
