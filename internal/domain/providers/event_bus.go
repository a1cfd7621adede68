package providers

import (
	"context"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelEmergencies carries every emergency event
	EventChannelEmergencies = "emergency:requests"

	// EventChannelRegionalPrefix is the prefix for per-region channels
	EventChannelRegionalPrefix = "emergency:region:"
)

// GetRegionalChannel returns the channel name for a region
func GetRegionalChannel(region string) string {
	return EventChannelRegionalPrefix + entities.NormalizeRegion(region)
}
