package tournament

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	// ErrMisconfigured wraps validation failures of a stored tournament.
	ErrMisconfigured = errors.New("tournament misconfigured")
	// ErrNotRegistered is returned when the user has no paid registration.
	ErrNotRegistered = errors.New("not registered")
)

// TournamentRepository defines what the app layer needs from persistence
type TournamentRepository interface {
	GetTournamentWithQuestions(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
}

// RegistrationChecker reports whether a user may join a tournament.
type RegistrationChecker interface {
	IsRegistered(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error)
}

// App loads tournaments for streaming and enforces the registration gate.
type App struct {
	repo          TournamentRepository
	registrations RegistrationChecker
	cache         *Cache
}

// NewApp creates a new tournament App. registrations may be nil to disable the gate.
func NewApp(repo TournamentRepository, registrations RegistrationChecker, cache *Cache) *App {
	return &App{
		repo:          repo,
		registrations: registrations,
		cache:         cache,
	}
}

// LoadTournamentWithQuestions returns the tournament with ordered questions.
// The result is shared between callers and must not be modified.
func (a *App) LoadTournamentWithQuestions(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var generation uint64
	if a.cache != nil {
		if t, ok := a.cache.Get(id); ok {
			return t, nil
		}
		generation = a.cache.Generation()
	}

	t, err := a.repo.GetTournamentWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	if err := t.Validate(); err != nil {
		log.Error().Err(err).Str("tournament_id", id.String()).Msg("refusing to serve misconfigured tournament")
		return nil, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}

	// An invalidation during the load means t may already be stale
	if a.cache != nil && !a.cache.PutIfCurrent(t, generation) {
		log.Debug().Str("tournament_id", id.String()).Msg("tournament changed while loading, not cached")
	}
	return t, nil
}

// CheckRegistration returns ErrNotRegistered unless the user holds a paid registration.
func (a *App) CheckRegistration(ctx context.Context, userID, tournamentID uuid.UUID) error {
	if a.registrations == nil {
		return nil
	}

	ok, err := a.registrations.IsRegistered(ctx, userID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}
	if !ok {
		return ErrNotRegistered
	}
	return nil
}

// Invalidate drops a cached tournament.
func (a *App) Invalidate(id uuid.UUID) {
	if a.cache != nil {
		a.cache.Invalidate(id)
	}
}

// InvalidateAll drops every cached tournament.
func (a *App) InvalidateAll() {
	if a.cache != nil {
		a.cache.Clear()
	}
}
