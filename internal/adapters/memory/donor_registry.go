// Package memory holds the process-local donor registry and request ledger.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

// DonorRegistry implements repositories.DonorRegistry over a slice.
// Writers hold the write lock for the whole append; queries hold the read
// lock while scanning, so a scan never sees a half-appended donor.
type DonorRegistry struct {
	mu     sync.RWMutex
	donors []entities.Donor
}

var _ repositories.DonorRegistry = (*DonorRegistry)(nil)

// NewDonorRegistry creates an empty registry
func NewDonorRegistry() *DonorRegistry {
	return &DonorRegistry{}
}

// Register appends donor
func (r *DonorRegistry) Register(_ context.Context, donor entities.Donor) error {
	r.mu.Lock()
	r.donors = append(r.donors, donor)
	r.mu.Unlock()
	return nil
}

// Query returns the donors of bloodType within radiusKm of origin.
func (r *DonorRegistry) Query(_ context.Context, bloodType entities.BloodType, origin geo.Point, radiusKm float64) ([]entities.DonorMatch, error) {
	r.mu.RLock()
	matches := make([]entities.DonorMatch, 0)
	for _, d := range r.donors {
		if d.BloodType != bloodType {
			continue
		}
		distance := geo.DistanceKm(origin, d.Location)
		if distance <= radiusKm {
			matches = append(matches, entities.DonorMatch{Donor: d, DistanceKm: distance})
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches, nil
}

// List returns all donors in registration order
func (r *DonorRegistry) List(_ context.Context) ([]entities.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Donor, len(r.donors))
	copy(out, r.donors)
	return out, nil
}

// Count returns the number of donors
func (r *DonorRegistry) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.donors), nil
}

// Restore replaces the registry contents
func (r *DonorRegistry) Restore(_ context.Context, donors []entities.Donor) error {
	restored := make([]entities.Donor, len(donors))
	copy(restored, donors)

	r.mu.Lock()
	r.donors = restored
	r.mu.Unlock()
	return nil
}
