package providers

import (
	"context"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// SnapshotStore persists the registry and ledger between restarts.
type SnapshotStore interface {
	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot entities.Snapshot) error

	// Load returns the stored snapshot, or an empty one if none exists
	Load(ctx context.Context) (entities.Snapshot, error)
}
