package locale

import (
	"strings"
)

type Country struct {
	Code      string   // ISO 3166-1 alpha-2 country code (e.g., "ES", "PT")
	Name      string   // Human-readable country name
	TimeZones []string // IANA zones that imply this country
}

var (
	Countries = map[string]Country{
		"ES": {Code: "ES", Name: "Spain", TimeZones: []string{"Europe/Madrid", "Atlantic/Canary", "Africa/Ceuta"}},
		"PT": {Code: "PT", Name: "Portugal", TimeZones: []string{"Europe/Lisbon", "Atlantic/Madeira", "Atlantic/Azores"}},
		"FR": {Code: "FR", Name: "France", TimeZones: []string{"Europe/Paris"}},
		"IT": {Code: "IT", Name: "Italy", TimeZones: []string{"Europe/Rome"}},
		"GB": {Code: "GB", Name: "United Kingdom", TimeZones: []string{"Europe/London"}},
		"US": {Code: "US", Name: "United States", TimeZones: []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles"}},
	}
)

// DetectRegion maps a restaurant time zone to the phone region used for
// numbers written without an international prefix. Unknown zones yield "".
func DetectRegion(tz string) string {
	for code, country := range Countries {
		for _, z := range country.TimeZones {
			if strings.EqualFold(tz, z) {
				return code
			}
		}
	}
	return ""
}
