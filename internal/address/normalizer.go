package address

import (
	"fmt"
	"strconv"
	"strings"

	"ghl-timezone-sync/pkg/models"
)

// Key aliases, most common first. GHL workflows send address1/postalCode
// while hand-built webhooks usually use address/zip.
var (
	contactIDKeys = []string{"contact_id", "contactId", "id"}
	addressKeys   = []string{"address", "address1", "street"}
	cityKeys      = []string{"city"}
	stateKeys     = []string{"state"}
	zipKeys       = []string{"postal_code", "zip", "postalCode", "zip_code"}
)

// Parts holds the address fields extracted from a webhook payload.
type Parts struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Empty reports whether no address-bearing field is present.
func (p Parts) Empty() bool {
	return p.Address == "" && p.City == "" && p.State == "" && p.PostalCode == ""
}

// ContactID returns the contact id, checking the top level before the nested
// contact object.
func ContactID(payload models.WebhookPayload) string {
	return lookup(payload, contactIDKeys)
}

// Extract pulls the address parts out of a payload.
func Extract(payload models.WebhookPayload) Parts {
	return Parts{
		Address:    lookup(payload, addressKeys),
		City:       lookup(payload, cityKeys),
		State:      lookup(payload, stateKeys),
		PostalCode: lookup(payload, zipKeys),
	}
}

// Candidates returns address strings to geocode, most specific first.
func Candidates(p Parts) []string {
	var out []string
	add := func(s string) {
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	if p.Address != "" && (p.City != "" || p.State != "") {
		add(join(p.Address, p.City, p.State, "USA"))
	}
	if p.PostalCode != "" {
		add(join(p.PostalCode, "USA"))
	}
	if p.City != "" && p.State != "" {
		add(join(p.City, p.State, "USA"))
	}
	if p.State != "" {
		add(join(p.State, "USA"))
	}
	return out
}

func join(parts ...string) string {
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// lookup scans the top level for each key in order, then the nested contact
// object. The first non-empty value wins.
func lookup(payload models.WebhookPayload, keys []string) string {
	if v := firstValue(payload, keys); v != "" {
		return v
	}
	if nested := payload.Contact(); nested != nil {
		return firstValue(nested, keys)
	}
	return ""
}

func firstValue(m map[string]interface{}, keys []string) string {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if v := stringify(raw); v != "" {
			return v
		}
	}
	return ""
}

func stringify(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers decode as float64; zip codes are integral.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int, int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
