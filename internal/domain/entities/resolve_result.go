package entities

import (
	"encoding/json"
	"fmt"
)

// ResolveStatus tags the outcome of a facility lookup.
type ResolveStatus int

const (
	ResolveNotFound ResolveStatus = iota
	ResolveUnique
	ResolveAmbiguous
)

func (s ResolveStatus) String() string {
	switch s {
	case ResolveUnique:
		return "unique"
	case ResolveAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// MarshalJSON encodes the status by name.
func (s ResolveStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name written by MarshalJSON.
func (s *ResolveStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "unique":
		*s = ResolveUnique
	case "ambiguous":
		*s = ResolveAmbiguous
	case "not_found":
		*s = ResolveNotFound
	default:
		return fmt.Errorf("unknown resolve status %q", name)
	}
	return nil
}

// ResolveResult is the outcome of resolving a free-text facility name.
// Matches is empty for ResolveNotFound, has one element for ResolveUnique
// and two or more for ResolveAmbiguous, in directory order.
type ResolveResult struct {
	Status  ResolveStatus `json:"status"`
	Query   string        `json:"query"`
	Matches []Facility    `json:"matches"`
}

// NewResolveResult derives the status from the number of matches.
func NewResolveResult(query string, matches []Facility) ResolveResult {
	res := ResolveResult{Query: query, Matches: matches}
	switch len(matches) {
	case 0:
		res.Status = ResolveNotFound
		res.Matches = []Facility{}
	case 1:
		res.Status = ResolveUnique
	default:
		res.Status = ResolveAmbiguous
	}
	return res
}

// Facility returns the resolved facility when the lookup was unique.
func (r ResolveResult) Facility() (Facility, bool) {
	if r.Status != ResolveUnique {
		return Facility{}, false
	}
	return r.Matches[0], true
}
