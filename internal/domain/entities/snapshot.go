package entities

import "time"

// Snapshot is the persisted state of the registry and the ledger.
type Snapshot struct {
	Donors   []Donor            `json:"donors"`
	Requests []EmergencyRequest `json:"requests"`
	SavedAt  time.Time          `json:"saved_at"`
}

// IsEmpty reports whether the snapshot carries no records.
func (s Snapshot) IsEmpty() bool {
	return len(s.Donors) == 0 && len(s.Requests) == 0
}
