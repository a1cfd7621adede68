package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

// ErrBusClosed is returned by Subscribe after Close.
var ErrBusClosed = errors.New("event bus is closed")

// topic is one Redis subscription shared by every local subscriber of a
// channel. Slow subscribers miss events rather than stall the others.
type topic struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.EmergencyEvent]struct{}
}

// RedisEventBus fans emergency events out over Redis Pub/Sub, so every
// server instance sharing the Redis sees every emergency.
type RedisEventBus struct {
	client *redisclient.Client

	mu     sync.RWMutex
	topics map[string]*topic
	closed bool
	done   chan struct{}
}

var _ providers.EventBus = (*RedisEventBus)(nil)

func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	return &RedisEventBus{
		client: client,
		topics: make(map[string]*topic),
		done:   make(chan struct{}),
	}
}

// Publish sends event to channel as JSON.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode emergency event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Msg("Published event")
	return nil
}

// Subscribe returns a channel of events that is closed when ctx is done or
// the bus is closed. The Redis subscription is confirmed before it
// returns, so nothing published afterwards is missed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	t, ok := b.topics[channel]
	if !ok {
		pubsub := b.client.Client().Subscribe(context.Background(), channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
		}
		t = &topic{pubsub: pubsub, subscribers: make(map[chan *entities.EmergencyEvent]struct{})}
		b.topics[channel] = t
		go b.dispatch(channel, t)
	}

	events := make(chan *entities.EmergencyEvent, subscriberBuffer)
	t.subscribers[events] = struct{}{}
	log.Info().Str("channel", channel).Int("subscribers", len(t.subscribers)).Msg("Subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.unsubscribe(channel, events)
	}()

	return events, nil
}

// dispatch decodes messages of one topic and hands them to its subscribers
// until the topic's pubsub is closed.
func (b *RedisEventBus) dispatch(channel string, t *topic) {
	for msg := range t.pubsub.Channel() {
		var event entities.EmergencyEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Dropping undecodable event")
			continue
		}

		b.mu.RLock()
		for sub := range t.subscribers {
			select {
			case sub <- &event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
			}
		}
		b.mu.RUnlock()
	}
}

// unsubscribe closes events and drops the Redis subscription once the
// topic has no subscribers left.
func (b *RedisEventBus) unsubscribe(channel string, events chan *entities.EmergencyEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[channel]
	if !ok {
		return
	}
	if _, ok := t.subscribers[events]; !ok {
		return
	}
	delete(t.subscribers, events)
	close(events)

	if len(t.subscribers) == 0 {
		_ = t.pubsub.Close()
		delete(b.topics, channel)
		log.Info().Str("channel", channel).Msg("Closed subscription")
	}
}

// Close ends every subscription. Calling it twice is harmless.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)

	var errs []error
	for channel, t := range b.topics {
		for sub := range t.subscribers {
			close(sub)
		}
		if err := t.pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscription %s: %w", channel, err))
		}
		delete(b.topics, channel)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info().Msg("Event bus closed")
	return nil
}
