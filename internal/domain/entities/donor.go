package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

// Donor is a registered blood donor. A donor is located at the facility
// chosen at registration; its coordinates are copied from that facility.
type Donor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BloodType    BloodType `json:"blood_type"`
	Region       string    `json:"region"`
	FacilityName string    `json:"facility_name"`
	Location     geo.Point `json:"location"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewDonor builds a donor located at facility.
func NewDonor(name string, bloodType BloodType, facility Facility, phone string, now time.Time) (*Donor, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, apperrors.NewValidationError("donor name is required")
	}
	if phone == "" {
		return nil, apperrors.NewValidationError("donor phone is required")
	}
	if bloodType == "" {
		return nil, apperrors.NewValidationError("donor blood type is required")
	}

	return &Donor{
		ID:           uuid.NewString(),
		Name:         name,
		BloodType:    bloodType,
		Region:       facility.Region,
		FacilityName: facility.Name,
		Location:     facility.Location,
		Phone:        phone,
		RegisteredAt: now.UTC(),
	}, nil
}

// DonorMatch is a donor returned by a radius query with its distance from
// the query origin.
type DonorMatch struct {
	Donor      Donor   `json:"donor"`
	DistanceKm float64 `json:"distance_km"`
}
