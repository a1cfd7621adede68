package repositories

import (
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// FacilityDirectory is the read-only set of facilities grouped by region.
// It is populated once at startup and safe for concurrent use.
type FacilityDirectory interface {
	// Regions returns region names in directory order
	Regions() []string

	// HasRegion reports whether the (normalized) region exists
	HasRegion(region string) bool

	// InRegion returns the region's facilities in directory order
	InRegion(region string) []entities.Facility

	// All returns every facility, grouped by region in Regions() order
	All() []entities.Facility

	// Count returns the number of facilities
	Count() int
}

// FacilityFilter selects a page of facilities.
type FacilityFilter struct {
	Region string
	Offset int
	Limit  int
}

// FacilityPage is one page of a facility listing.
type FacilityPage struct {
	Facilities []entities.Facility `json:"facilities"`
	Total      int                 `json:"total"`
	Offset     int                 `json:"offset"`
	Limit      int                 `json:"limit"`
}
