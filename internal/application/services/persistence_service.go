package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/retry"
)

const (
	finalFlushTimeout  = 5 * time.Second
	defaultResaveDelay = 5 * time.Second
)

// SnapshotPersister writes the registry and the ledger to a SnapshotStore
// behind the response path. Change signals are buffered and coalesced: a
// burst of mutations within FlushInterval results in one save.
type SnapshotPersister struct {
	store         providers.SnapshotStore
	registry      repositories.DonorRegistry
	ledger        repositories.RequestLedger
	backend       string
	signals       chan struct{}
	flushInterval time.Duration
	retryConfig   retry.Config
	resaveDelay   time.Duration
	metrics       *observability.Metrics
}

// NewSnapshotPersister creates a persister. backend only labels logs and metrics.
func NewSnapshotPersister(
	store providers.SnapshotStore,
	registry repositories.DonorRegistry,
	ledger repositories.RequestLedger,
	backend string,
	queueSize int,
	flushInterval time.Duration,
	metrics *observability.Metrics,
) *SnapshotPersister {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &SnapshotPersister{
		store:         store,
		registry:      registry,
		ledger:        ledger,
		backend:       backend,
		signals:       make(chan struct{}, queueSize),
		flushInterval: flushInterval,
		retryConfig:   retry.SnapshotConfig(),
		resaveDelay:   defaultResaveDelay,
		metrics:       metrics,
	}
}

// WithResaveDelay sets how long Run waits before saving again after a
// save failed with no newer change to trigger one.
func (p *SnapshotPersister) WithResaveDelay(d time.Duration) *SnapshotPersister {
	if d > 0 {
		p.resaveDelay = d
	}
	return p
}

// Restore loads the stored snapshot into the registry and the ledger.
// Call it before serving requests.
func (p *SnapshotPersister) Restore(ctx context.Context) error {
	snapshot, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := p.registry.Restore(ctx, snapshot.Donors); err != nil {
		return err
	}
	if err := p.ledger.Restore(ctx, snapshot.Requests); err != nil {
		return err
	}

	log.Info().
		Str("backend", p.backend).
		Int("donors", len(snapshot.Donors)).
		Int("requests", len(snapshot.Requests)).
		Time("saved_at", snapshot.SavedAt).
		Msg("Restored snapshot")
	return nil
}

// NotifyChanged schedules a save. It never blocks; when the queue is full
// a save is already pending and will include this change.
func (p *SnapshotPersister) NotifyChanged() {
	select {
	case p.signals <- struct{}{}:
	default:
	}
}

// Run saves snapshots until ctx is done. State stays dirty until a save
// succeeds: a failed save is attempted again after resaveDelay, and dirty
// or pending state is flushed once more before Run returns.
func (p *SnapshotPersister) Run(ctx context.Context) error {
	log.Info().Str("backend", p.backend).Dur("flush_interval", p.flushInterval).Msg("Snapshot persister started")

	var (
		dirty  bool
		resave *time.Timer
		retryC <-chan time.Time
	)
	defer func() {
		if resave != nil {
			resave.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			pending := p.drain()
			p.finalFlush(pending || dirty)
			return nil
		case <-p.signals:
		case <-retryC:
		}
		if resave != nil {
			resave.Stop()
			resave, retryC = nil, nil
		}

		if p.flushInterval > 0 {
			timer := time.NewTimer(p.flushInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				p.finalFlush(true)
				return nil
			case <-timer.C:
			}
		}
		p.drain()

		if err := p.Flush(ctx); err != nil {
			dirty = true
			resave = time.NewTimer(p.resaveDelay)
			retryC = resave.C
			log.Error().Err(err).Str("backend", p.backend).Dur("resave_in", p.resaveDelay).Msg("Snapshot save failed, state kept dirty")
			continue
		}
		dirty = false
	}
}

// drain empties the signal queue and reports whether anything was queued.
func (p *SnapshotPersister) drain() bool {
	drained := false
	for {
		select {
		case <-p.signals:
			drained = true
		default:
			return drained
		}
	}
}

func (p *SnapshotPersister) finalFlush(pending bool) {
	if !pending {
		log.Info().Str("backend", p.backend).Msg("Snapshot persister stopped")
		return
	}
	p.drain()
	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		log.Error().Err(err).Str("backend", p.backend).Msg("Final snapshot save failed")
		return
	}
	log.Info().Str("backend", p.backend).Msg("Snapshot persister stopped")
}

// Flush saves the current state now, retrying with backoff.
func (p *SnapshotPersister) Flush(ctx context.Context) error {
	snapshot, err := p.capture(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = retry.Do(ctx, p.retryConfig, "snapshot save", func(ctx context.Context) error {
		return p.store.Save(ctx, snapshot)
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Snapshot save attempt failed")
	})
	observability.RecordSnapshotSave(ctx, p.metrics, p.backend, time.Since(start), err)
	if err != nil {
		return err
	}

	log.Debug().
		Str("backend", p.backend).
		Int("donors", len(snapshot.Donors)).
		Int("requests", len(snapshot.Requests)).
		Msg("Snapshot saved")
	return nil
}

func (p *SnapshotPersister) capture(ctx context.Context) (entities.Snapshot, error) {
	donors, err := p.registry.List(ctx)
	if err != nil {
		return entities.Snapshot{}, fmt.Errorf("failed to read donors: %w", err)
	}
	requests, err := p.ledger.List(ctx)
	if err != nil {
		return entities.Snapshot{}, fmt.Errorf("failed to read requests: %w", err)
	}
	return entities.Snapshot{
		Donors:   donors,
		Requests: requests,
		SavedAt:  time.Now().UTC(),
	}, nil
}
