package repositories

import (
	"context"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// RequestLedger is the append-only log of emergency requests.
type RequestLedger interface {
	// Append assigns the next sequence id to req and stores a copy of it.
	// The returned request carries the assigned id.
	Append(ctx context.Context, req entities.EmergencyRequest) (entities.EmergencyRequest, error)

	// List returns a copy of all requests in sequence order
	List(ctx context.Context) ([]entities.EmergencyRequest, error)

	// Count returns the number of recorded requests
	Count(ctx context.Context) (int, error)

	// Restore replaces the contents with previously persisted requests.
	Restore(ctx context.Context, requests []entities.EmergencyRequest) error
}
