package timezone

import (
	"errors"

	"github.com/bradfitz/latlong"
)

var ErrUnknownZone = errors.New("timezone: no zone for coordinates")

// Offline resolves coordinates to a zone from the tables compiled into
// latlong. It never returns a display name.
type Offline struct{}

func (Offline) Lookup(lat, lng float64) (string, error) {
	zone := latlong.LookupZoneName(lat, lng)
	if zone == "" || zone == "tables not generated yet" {
		return "", ErrUnknownZone
	}
	return zone, nil
}
