package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/cache"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/database"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/directory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/events"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/memory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/middleware"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/routes"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.Env, cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	dir, err := directory.Load(cfg.Directory.Path)
	if err != nil {
		return err
	}
	log.Info().
		Strs("regions", dir.Regions()).
		Int("facilities", dir.Count()).
		Msg("Facility directory loaded")

	registry := memory.NewDonorRegistry()
	ledger := memory.NewRequestLedger()

	// Redis backs the response cache, the event bus and optionally the snapshot store
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			if cfg.Persistence.Backend == config.PersistenceRedis {
				return err
			}
			log.Warn().Err(err).Msg("Redis unavailable; running without cache and event bus")
		} else {
			defer redisClient.Close()
		}
	}

	var (
		responseCache providers.ResponseCache
		eventBus      providers.EventBus
	)
	if redisClient != nil && cfg.Redis.Enabled {
		responseCache = cache.NewRedisResponseCache(redisClient, dir.Version())
		bus := events.NewRedisEventBus(redisClient)
		defer func() {
			if err := bus.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		eventBus = bus
	}

	var dependencies []handlers.DependencyChecker
	if redisClient != nil {
		dependencies = append(dependencies, redisClient)
	}

	store, pgClient, closeStore, err := openSnapshotStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()
	if pgClient != nil {
		dependencies = append(dependencies, pgClient)
	}

	var (
		persister *services.SnapshotPersister
		notifier  services.ChangeNotifier
	)
	if store != nil {
		persister = services.NewSnapshotPersister(
			store, registry, ledger,
			cfg.Persistence.Backend,
			cfg.Persistence.QueueSize,
			cfg.Persistence.FlushInterval,
			metrics,
		)
		if err := persister.Restore(ctx); err != nil {
			return err
		}
		notifier = persister
	}

	resolver := services.NewFacilityResolver(dir)
	donorService := services.NewDonorService(dir, resolver, registry, notifier, metrics)
	matchingService := services.NewMatchingService(dir, resolver, registry, ledger, eventBus, notifier, metrics, cfg.Matching)
	facilityService := services.NewFacilityService(dir, resolver)
	tools := handlers.NewToolExecutor(donorService, matchingService, facilityService, cfg.ValidationPhone)

	var cacheMiddleware *middleware.CacheMiddleware
	if responseCache != nil {
		ttl := time.Duration(cfg.Cache.FacilitiesTTLSeconds) * time.Second
		cacheMiddleware = middleware.NewCacheMiddleware(responseCache, metrics, ttl)
	}

	router := routes.NewRouter(
		handlers.NewDonorHandler(donorService, matchingService),
		handlers.NewEmergencyHandler(matchingService),
		handlers.NewFacilityHandler(facilityService),
		handlers.NewStatusHandler(donorService, matchingService, facilityService, tools, cfg.ValidationPhone).
			WithDependencies(dependencies...),
		handlers.NewRPCHandler(tools),
		cacheMiddleware,
		metrics,
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// The persister outlives the server so it can save whatever the last
	// requests changed.
	persistCtx, stopPersister := context.WithCancel(context.Background())
	defer stopPersister()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("persistence", cfg.Persistence.Backend).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		stopPersister()
		return err
	})

	if persister != nil {
		g.Go(func() error {
			return persister.Run(persistCtx)
		})
	}

	if eventBus != nil {
		g.Go(func() error {
			return logEmergencyEvents(gctx, eventBus)
		})
	}

	return g.Wait()
}

// openSnapshotStore returns a nil store when persistence is off. The
// postgres client is returned for health reporting when that backend is used.
func openSnapshotStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (providers.SnapshotStore, *postgres.Client, func(), error) {
	noop := func() {}

	switch cfg.Persistence.Backend {
	case config.PersistenceRedis:
		return cache.NewRedisSnapshotStore(redisClient, cfg.Persistence.SnapshotKey), nil, noop, nil

	case config.PersistencePostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		adapter := database.NewSnapshotAdapter(pgClient)
		if err := adapter.EnsureSchema(ctx); err != nil {
			_ = pgClient.Close()
			return nil, nil, noop, err
		}
		return adapter, pgClient, func() { _ = pgClient.Close() }, nil

	default:
		log.Warn().Msg("Persistence disabled; donors and requests live in memory only")
		return nil, nil, noop, nil
	}
}

// logEmergencyEvents writes every published emergency to the log until ctx ends.
func logEmergencyEvents(ctx context.Context, bus providers.EventBus) error {
	eventsCh, err := bus.Subscribe(ctx, providers.EventChannelEmergencies)
	if err != nil {
		log.Warn().Err(err).Msg("Emergency event feed unavailable")
		return nil
	}

	for event := range eventsCh {
		log.Info().
			Str("event_id", event.ID).
			Int("sequence_id", event.SequenceID).
			Str("blood_type", string(event.BloodType)).
			Str("region", event.Region).
			Str("facility", event.FacilityName).
			Int("match_count", event.MatchCount).
			Msg("Emergency event")
	}
	return nil
}
