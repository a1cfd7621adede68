package repositories

import (
	"context"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

// DonorRegistry is the append-only collection of registered donors.
type DonorRegistry interface {
	// Register appends a donor. Duplicates are allowed.
	Register(ctx context.Context, donor entities.Donor) error

	// Query returns donors of bloodType within radiusKm of origin (inclusive),
	// sorted by ascending distance with ties in registration order.
	Query(ctx context.Context, bloodType entities.BloodType, origin geo.Point, radiusKm float64) ([]entities.DonorMatch, error)

	// List returns a copy of all donors in registration order
	List(ctx context.Context) ([]entities.Donor, error)

	// Count returns the number of registered donors
	Count(ctx context.Context) (int, error)

	// Restore replaces the contents with previously persisted donors.
	// Only valid before the registry starts serving.
	Restore(ctx context.Context, donors []entities.Donor) error
}
