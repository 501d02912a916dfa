package models

// WebhookPayload is the loosely typed body posted by a GoHighLevel workflow.
// Keys may appear at the top level or nested one level under "contact".
type WebhookPayload map[string]interface{}

// Contact returns the nested "contact" object, or nil when absent.
func (p WebhookPayload) Contact() map[string]interface{} {
	nested, ok := p["contact"].(map[string]interface{})
	if !ok {
		return nil
	}
	return nested
}

// Location is a geocoded point.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// ResolvedTimeZone is the outcome of a lookup. Name is empty when the zone
// came from a fallback that has no display name.
type ResolvedTimeZone struct {
	ID   string `json:"timeZoneId"`
	Name string `json:"timeZoneName,omitempty"`
}

// WebhookResponse is the immediate acknowledgement sent to the CRM.
type WebhookResponse struct {
	OK     bool   `json:"ok"`
	Queued bool   `json:"queued,omitempty"`
	JobID  string `json:"job_id,omitempty"`
	Error  string `json:"error,omitempty"`
}
