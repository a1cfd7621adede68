package entities

import "github.com/zatekoja/blooddonorconnect/backend/pkg/geo"

// Facility is a hospital with fixed coordinates and two contact lines.
// Facilities are loaded once and never modified.
type Facility struct {
	Name             string    `json:"name"`
	Region           string    `json:"region"`
	Location         geo.Point `json:"location"`
	EmergencyContact string    `json:"emergency_contact"`
	// SecondaryContact is the blood bank line, used for escalation.
	SecondaryContact string `json:"secondary_contact"`
}

// FacilityNames returns the names of facilities in order.
func FacilityNames(facilities []Facility) []string {
	names := make([]string, len(facilities))
	for i, f := range facilities {
		names[i] = f.Name
	}
	return names
}
