package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

// EmergencyEventType represents the type of emergency event
type EmergencyEventType string

const (
	EmergencyEventTypeCreated   EmergencyEventType = "emergency_created"
	EmergencyEventTypeEscalated EmergencyEventType = "emergency_escalated"
)

// EmergencyEvent is published after an emergency request is recorded.
type EmergencyEvent struct {
	ID           string             `json:"id"`
	EventType    EmergencyEventType `json:"event_type"`
	SequenceID   int                `json:"sequence_id"`
	BloodType    BloodType          `json:"blood_type"`
	Region       string             `json:"region"`
	FacilityName string             `json:"facility_name"`
	Location     geo.Point          `json:"location"`
	Urgency      string             `json:"urgency"`
	MatchCount   int                `json:"match_count"`
	Timestamp    time.Time          `json:"timestamp"`
}

// NewEmergencyEvent creates an event for req. Requests without any matching
// donor produce an escalation event.
func NewEmergencyEvent(req *EmergencyRequest, matchCount int) *EmergencyEvent {
	eventType := EmergencyEventTypeCreated
	if matchCount == 0 {
		eventType = EmergencyEventTypeEscalated
	}
	return &EmergencyEvent{
		ID:           uuid.NewString(),
		EventType:    eventType,
		SequenceID:   req.SequenceID,
		BloodType:    req.BloodType,
		Region:       req.Region,
		FacilityName: req.Facility.Name,
		Location:     req.Facility.Location,
		Urgency:      req.Urgency,
		MatchCount:   matchCount,
		Timestamp:    time.Now().UTC(),
	}
}
