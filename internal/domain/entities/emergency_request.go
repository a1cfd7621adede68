package entities

import (
	"strings"
	"time"

	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

// DefaultUrgency is used when an emergency request does not name one.
const DefaultUrgency = "high"

// EmergencyRequest records a patient's need for blood at a facility.
// SequenceID is assigned by the ledger: 1-based, equal to the position
// of the request in the ledger.
type EmergencyRequest struct {
	SequenceID  int       `json:"sequence_id"`
	PatientName string    `json:"patient_name"`
	BloodType   BloodType `json:"blood_type"`
	Region      string    `json:"region"`
	Facility    Facility  `json:"facility"`
	Urgency     string    `json:"urgency"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEmergencyRequest builds an unsequenced request for facility.
func NewEmergencyRequest(patientName string, bloodType BloodType, facility Facility, urgency string, now time.Time) (*EmergencyRequest, error) {
	patientName = strings.TrimSpace(patientName)
	if patientName == "" {
		return nil, apperrors.NewValidationError("patient name is required")
	}
	urgency = strings.ToLower(strings.TrimSpace(urgency))
	if urgency == "" {
		urgency = DefaultUrgency
	}

	return &EmergencyRequest{
		PatientName: patientName,
		BloodType:   bloodType,
		Region:      facility.Region,
		Facility:    facility,
		Urgency:     urgency,
		CreatedAt:   now.UTC(),
	}, nil
}

// EscalationReasonNoDonors is set when an emergency search found nobody.
const EscalationReasonNoDonors = "no_donors_found"

// Escalation tells the caller to contact the facility directly.
type Escalation struct {
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	FacilityName string `json:"facility_name"`
	Contact      string `json:"contact"`
}
