package tzsync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/internal/ghl"
	"ghl-timezone-sync/internal/timezone"
	"ghl-timezone-sync/pkg/models"
)

var ErrUnresolved = errors.New("tzsync: no time zone could be resolved")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
}

type TimeZoneResolver interface {
	TimeZone(ctx context.Context, lat, lng float64) (*models.ResolvedTimeZone, error)
}

// OfflineResolver maps coordinates to a zone without a network call.
type OfflineResolver interface {
	Lookup(lat, lng float64) (string, error)
}

type FieldResolver interface {
	TimeZoneFieldID(ctx context.Context) (string, error)
}

type ContactUpdater interface {
	UpdateContact(ctx context.Context, u ghl.ContactUpdate) (string, error)
}

type Outcome string

const (
	OutcomeResolved         Outcome = "resolved"
	OutcomeFallbackResolved Outcome = "fallback_resolved"
	OutcomeUnresolved       Outcome = "unresolved"
)

// Source says which lookup produced the zone.
type Source string

const (
	SourceGoogle     Source = "google"
	SourceOffline    Source = "offline"
	SourceStateTable Source = "state_table"
)

// Attempt records one address candidate and why it did or did not resolve.
type Attempt struct {
	Candidate string `json:"candidate"`
	Error     string `json:"error,omitempty"`
}

type Result struct {
	ContactID string                  `json:"contact_id,omitempty"`
	Outcome   Outcome                 `json:"outcome"`
	Source    Source                  `json:"source,omitempty"`
	Candidate string                  `json:"candidate,omitempty"`
	TimeZone  models.ResolvedTimeZone `json:"time_zone"`
	Attempts  []Attempt               `json:"attempts,omitempty"`
	FieldID   string                  `json:"field_id,omitempty"`
	Strategy  string                  `json:"strategy,omitempty"`
	Updated   bool                    `json:"updated"`
}

type Service struct {
	geocoder Geocoder
	zones    TimeZoneResolver
	offline  OfflineResolver
	fields   FieldResolver
	updater  ContactUpdater
}

// NewService wires the lookup pipeline. offline may be nil.
func NewService(geocoder Geocoder, zones TimeZoneResolver, offline OfflineResolver, fields FieldResolver, updater ContactUpdater) *Service {
	return &Service{
		geocoder: geocoder,
		zones:    zones,
		offline:  offline,
		fields:   fields,
		updater:  updater,
	}
}

// Resolve tries each address candidate in priority order and stops at the
// first that both geocodes and yields a zone from the time zone API. When
// every candidate fails the state table is consulted, then the offline
// lookup for the first coordinates that geocoded. Returns ErrUnresolved if
// nothing matched.
func (s *Service) Resolve(ctx context.Context, parts address.Parts) (*Result, error) {
	result := &Result{Outcome: OutcomeUnresolved}

	var geocoded *geocodedCandidate
	for _, candidate := range address.Candidates(parts) {
		loc, tz, err := s.resolveCandidate(ctx, candidate)
		if loc != nil && geocoded == nil {
			geocoded = &geocodedCandidate{candidate: candidate, loc: *loc}
		}
		if err != nil {
			log.Printf("Candidate %q did not resolve: %v", candidate, err)
			result.Attempts = append(result.Attempts, Attempt{Candidate: candidate, Error: err.Error()})
			continue
		}
		result.Attempts = append(result.Attempts, Attempt{Candidate: candidate})
		result.Outcome = OutcomeResolved
		result.Source = SourceGoogle
		result.Candidate = candidate
		result.TimeZone = *tz
		return result, nil
	}

	if zone, ok := timezone.ForState(parts.State); ok {
		log.Printf("All candidates failed; state %q falls back to %s", parts.State, zone)
		result.Outcome = OutcomeFallbackResolved
		result.Source = SourceStateTable
		result.TimeZone = models.ResolvedTimeZone{ID: zone}
		return result, nil
	}

	if geocoded != nil && s.offline != nil {
		zone, err := s.offline.Lookup(geocoded.loc.Latitude, geocoded.loc.Longitude)
		if err == nil {
			log.Printf("All candidates failed; offline lookup for %q gave %s", geocoded.candidate, zone)
			result.Outcome = OutcomeFallbackResolved
			result.Source = SourceOffline
			result.Candidate = geocoded.candidate
			result.TimeZone = models.ResolvedTimeZone{ID: zone}
			return result, nil
		}
		log.Printf("Offline lookup for %q failed: %v", geocoded.candidate, err)
	}

	return result, ErrUnresolved
}

type geocodedCandidate struct {
	candidate string
	loc       models.Location
}

// resolveCandidate returns the geocoded location whenever geocoding
// succeeded, even if the time zone call then failed.
func (s *Service) resolveCandidate(ctx context.Context, candidate string) (*models.Location, *models.ResolvedTimeZone, error) {
	loc, err := s.geocoder.Geocode(ctx, candidate)
	if err != nil {
		return nil, nil, fmt.Errorf("geocode: %w", err)
	}

	tz, err := s.zones.TimeZone(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return loc, nil, fmt.Errorf("time zone: %w", err)
	}
	return loc, tz, nil
}

// Sync resolves the contact's zone and writes it back. A missing custom
// field is not an error; the contact's own timezone is still set.
func (s *Service) Sync(ctx context.Context, contactID string, parts address.Parts) (*Result, error) {
	result, err := s.Resolve(ctx, parts)
	if result != nil {
		result.ContactID = contactID
	}
	if err != nil {
		return result, err
	}

	fieldID, err := s.fields.TimeZoneFieldID(ctx)
	if err != nil {
		log.Printf("Contact %s: no time zone custom field (%v)", contactID, err)
	}
	result.FieldID = fieldID

	strategy, err := s.updater.UpdateContact(ctx, ghl.ContactUpdate{
		ContactID:    contactID,
		TimeZoneID:   result.TimeZone.ID,
		TimeZoneName: result.TimeZone.Name,
		FieldID:      fieldID,
	})
	if err != nil {
		return result, fmt.Errorf("update contact %s: %w", contactID, err)
	}

	result.Strategy = strategy
	result.Updated = true
	return result, nil
}
