package timezone

import "strings"

// stateZones maps a US state or territory code to one representative zone.
// States spanning several zones collapse to the zone covering most people.
var stateZones = map[string]string{
	"AL": "America/Chicago",
	"AK": "America/Anchorage",
	"AZ": "America/Phoenix",
	"AR": "America/Chicago",
	"CA": "America/Los_Angeles",
	"CO": "America/Denver",
	"CT": "America/New_York",
	"DC": "America/New_York",
	"DE": "America/New_York",
	"FL": "America/New_York",
	"GA": "America/New_York",
	"HI": "Pacific/Honolulu",
	"IA": "America/Chicago",
	"ID": "America/Boise",
	"IL": "America/Chicago",
	"IN": "America/Indiana/Indianapolis",
	"KS": "America/Chicago",
	"KY": "America/New_York",
	"LA": "America/Chicago",
	"MA": "America/New_York",
	"MD": "America/New_York",
	"ME": "America/New_York",
	"MI": "America/Detroit",
	"MN": "America/Chicago",
	"MO": "America/Chicago",
	"MS": "America/Chicago",
	"MT": "America/Denver",
	"NC": "America/New_York",
	"ND": "America/Chicago",
	"NE": "America/Chicago",
	"NH": "America/New_York",
	"NJ": "America/New_York",
	"NM": "America/Denver",
	"NV": "America/Los_Angeles",
	"NY": "America/New_York",
	"OH": "America/New_York",
	"OK": "America/Chicago",
	"OR": "America/Los_Angeles",
	"PA": "America/New_York",
	"RI": "America/New_York",
	"SC": "America/New_York",
	"SD": "America/Chicago",
	"TN": "America/Chicago",
	"TX": "America/Chicago",
	"UT": "America/Denver",
	"VA": "America/New_York",
	"VT": "America/New_York",
	"WA": "America/Los_Angeles",
	"WI": "America/Chicago",
	"WV": "America/New_York",
	"WY": "America/Denver",
	"PR": "America/Puerto_Rico",
}

var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"district of columbia": "DC", "delaware": "DE", "florida": "FL",
	"georgia": "GA", "hawaii": "HI", "iowa": "IA", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "kansas": "KS", "kentucky": "KY",
	"louisiana": "LA", "massachusetts": "MA", "maryland": "MD", "maine": "ME",
	"michigan": "MI", "minnesota": "MN", "missouri": "MO", "mississippi": "MS",
	"montana": "MT", "north carolina": "NC", "north dakota": "ND",
	"nebraska": "NE", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "nevada": "NV", "new york": "NY", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "virginia": "VA",
	"vermont": "VT", "washington": "WA", "wisconsin": "WI",
	"west virginia": "WV", "wyoming": "WY", "puerto rico": "PR",
}

// ForState returns the representative zone for a two-letter state code or a
// full state name. Matching is case-insensitive.
func ForState(state string) (string, bool) {
	s := strings.TrimSpace(state)
	if code, ok := stateNames[strings.ToLower(s)]; ok {
		s = code
	}
	zone, ok := stateZones[strings.ToUpper(s)]
	return zone, ok
}
