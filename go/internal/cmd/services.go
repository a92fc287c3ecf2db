package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/answers"
	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/config"
	"github.com/mcdev12/livequiz/go/internal/events"
	"github.com/mcdev12/livequiz/go/internal/fixtures"
	"github.com/mcdev12/livequiz/go/internal/gateway"
	"github.com/mcdev12/livequiz/go/internal/health"
	"github.com/mcdev12/livequiz/go/internal/memory"
	"github.com/mcdev12/livequiz/go/internal/tournament"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Gateway    *gateway.Service
	Tournament *tournament.App
	Listener   *tournament.InvalidationListener
	Health     *health.Checker

	closers []func()
}

// backends are the persistence collaborators selected by configuration.
type backends struct {
	tournaments   tournament.TournamentRepository
	answers       answers.Source
	registrations tournament.RegistrationChecker
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Tournament app / answer lookup → Opener → Gateway
	clock := clockwork.NewRealClock()
	services := &Services{Health: &health.Checker{}}

	var (
		b   backends
		err error
	)
	switch cfg.Store {
	case config.StoreMemory:
		b, err = setupMemoryStore(cfg, clock)
	default:
		b, err = services.setupPostgresStore(ctx, cfg)
	}
	if err != nil {
		services.Close()
		return nil, err
	}

	if cfg.AnswersBackend == config.AnswersRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			services.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		services.closers = append(services.closers, func() { client.Close() })
		b.answers = answers.NewRedisRepository(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("answered sets read from redis")
	}

	if !cfg.RequireRegistration {
		b.registrations = nil
	}

	// Tournament
	cache := tournament.NewCache(cfg.TournamentCacheTTL, clock)
	services.Tournament = tournament.NewApp(b.tournaments, b.registrations, cache)

	if cfg.Store == config.StorePostgres {
		listenerCfg := tournament.DefaultListenerConfig()
		listenerCfg.DatabaseURL = cfg.DB.DSN()
		listener, err := tournament.NewInvalidationListener(services.Tournament, services.Tournament.InvalidateAll, listenerCfg)
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to start tournament listener: %w", err)
		}
		services.Listener = listener
		services.Health.Listener = listener
	}

	// Gateway
	resolver, err := setupResolver(cfg.Auth)
	if err != nil {
		services.Close()
		return nil, err
	}
	opener := gateway.NewOpener(resolver, services.Tournament, answers.NewLookup(b.answers, cfg.AnswersTimeout), clock)

	publisher, err := services.setupPublisher(ctx, cfg.NATS)
	if err != nil {
		services.Close()
		return nil, err
	}

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.TickInterval = cfg.TickInterval
	services.Gateway = gateway.NewService(gatewayConfig, opener, publisher, clock)
	// Runs before the publisher closer so queued events still reach NATS
	services.closers = append(services.closers, services.Gateway.Close)
	services.Health.Streams = func() int { return services.Gateway.Stats().TotalConnections }

	return services, nil
}

func setupMemoryStore(cfg *config.Config, clock clockwork.Clock) (backends, error) {
	store := memory.NewStore()
	if cfg.FixturesPath != "" {
		file, err := fixtures.Load(cfg.FixturesPath)
		if err != nil {
			return backends{}, err
		}
		ds, err := file.Resolve(clock.Now())
		if err != nil {
			return backends{}, fmt.Errorf("failed to resolve fixtures: %w", err)
		}
		fixtures.Apply(store, ds)
		log.Info().
			Str("path", cfg.FixturesPath).
			Int("tournaments", len(ds.Tournaments)).
			Msg("fixtures loaded")
	}
	return backends{tournaments: store, answers: store, registrations: store}, nil
}

func (s *Services) setupPostgresStore(ctx context.Context, cfg *config.Config) (backends, error) {
	db, pool, err := setupDatabase(ctx, cfg.DB, cfg.Migrate)
	if err != nil {
		return backends{}, err
	}
	s.closers = append(s.closers, func() { db.Close() }, pool.Close)
	s.Health.DB = db

	return backends{
		tournaments:   tournament.NewRepository(db),
		answers:       answers.NewPostgresRepository(pool),
		registrations: tournament.NewRegistrationRepository(pool),
	}, nil
}

func setupResolver(cfg config.Auth) (auth.Resolver, error) {
	switch cfg.Mode {
	case config.AuthHeader:
		log.Warn().Msg("trusting X-User-ID header, do not use in production")
		return auth.HeaderResolver{}, nil
	case config.AuthJWT:
		return auth.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

func (s *Services) setupPublisher(ctx context.Context, cfg config.NATS) (events.Publisher, error) {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, lifecycle events are logged only")
		return events.LogPublisher{}, nil
	}

	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.URL
	jsCfg.StreamName = cfg.StreamName
	publisher, err := events.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, publisher.Close)
	s.Health.NATS = publisher
	return publisher, nil
}

// Start launches background workers. They stop when ctx is cancelled.
func (s *Services) Start(ctx context.Context) {
	if s.Listener != nil {
		go func() {
			if err := s.Listener.Start(ctx); err != nil {
				log.Error().Err(err).Msg("tournament listener failed")
			}
		}()
	}
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
