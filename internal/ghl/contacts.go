package ghl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
)

var ErrAllStrategiesFailed = errors.New("ghl: every contact update strategy failed")

// ContactUpdate is the time zone write for one contact. FieldID is the
// discovered "Time Zone" custom field and may be empty.
type ContactUpdate struct {
	ContactID    string
	TimeZoneID   string
	TimeZoneName string
	FieldID      string
}

type customFieldValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// UpdateStrategy is one method and endpoint shape for writing a contact.
type UpdateStrategy struct {
	Name   string
	Method string
	// Path is appended to the base URL; %s is the escaped contact id.
	Path string
	// IncludeID adds the contact id to the body for collection endpoints.
	IncludeID bool
	// IncludeLocation adds the location id to the body.
	IncludeLocation bool
}

// DefaultStrategies is the order contact writes are attempted in.
func DefaultStrategies() []UpdateStrategy {
	return []UpdateStrategy{
		{Name: "put-resource", Method: http.MethodPut, Path: "/contacts/%s"},
		{Name: "put-resource-slash", Method: http.MethodPut, Path: "/contacts/%s/"},
		{Name: "patch-resource", Method: http.MethodPatch, Path: "/contacts/%s"},
		{Name: "post-upsert", Method: http.MethodPost, Path: "/contacts/upsert", IncludeID: true, IncludeLocation: true},
		{Name: "put-collection", Method: http.MethodPut, Path: "/contacts/", IncludeID: true},
		{Name: "post-resource", Method: http.MethodPost, Path: "/contacts/%s"},
	}
}

// SetStrategies replaces the update strategy list.
func (c *Client) SetStrategies(strategies []UpdateStrategy) {
	c.strategies = strategies
}

func (s UpdateStrategy) url(baseURL, contactID string) string {
	if !strings.Contains(s.Path, "%s") {
		return baseURL + s.Path
	}
	return baseURL + fmt.Sprintf(s.Path, url.PathEscape(contactID))
}

func (c *Client) updateBody(s UpdateStrategy, u ContactUpdate) map[string]interface{} {
	fields := []customFieldValue{}
	if u.FieldID != "" {
		fields = append(fields, customFieldValue{ID: u.FieldID, Value: u.TimeZoneID})
	}
	if c.tzNameFieldID != "" && u.TimeZoneName != "" {
		fields = append(fields, customFieldValue{ID: c.tzNameFieldID, Value: u.TimeZoneName})
	}

	body := map[string]interface{}{
		"timezone": u.TimeZoneID,
	}
	if len(fields) > 0 {
		body["customFields"] = fields
	}
	if s.IncludeID {
		body["id"] = u.ContactID
	}
	if s.IncludeLocation && c.locationID != "" {
		body["locationId"] = c.locationID
	}
	return body
}

// UpdateContact writes the time zone to the contact, trying each strategy
// in order. It returns the name of the strategy that succeeded.
func (c *Client) UpdateContact(ctx context.Context, u ContactUpdate) (string, error) {
	var errs []error
	for _, s := range c.strategies {
		target := s.url(c.baseURL, u.ContactID)
		resp, err := c.sendRequest(ctx, s.Method, target, c.updateBody(s, u))
		if err == nil && resp.StatusCode < http.StatusMultipleChoices {
			log.Printf("Contact %s updated via %s (%s %s -> %d)", u.ContactID, s.Name, s.Method, target, resp.StatusCode)
			return s.Name, nil
		}
		if err == nil {
			err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		log.Printf("Contact %s update strategy %s failed: %v", u.ContactID, s.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return "", fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...))
}
