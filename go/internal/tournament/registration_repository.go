package tournament

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository reads paid registrations.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) IsRegistered(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error) {
	const query = `SELECT has_paid FROM registrations WHERE user_id = $1 AND tournament_id = $2`

	var hasPaid bool
	err := r.pool.QueryRow(ctx, query, userID, tournamentID).Scan(&hasPaid)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get registration: %w", err)
	}
	return hasPaid, nil
}

// Register upserts a registration. Used by the seeding tool and tests.
func (r *RegistrationRepository) Register(ctx context.Context, userID, tournamentID uuid.UUID, hasPaid bool) error {
	const query = `
INSERT INTO registrations (user_id, tournament_id, has_paid)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, tournament_id) DO UPDATE SET has_paid = EXCLUDED.has_paid`

	if _, err := r.pool.Exec(ctx, query, userID, tournamentID, hasPaid); err != nil {
		return fmt.Errorf("upsert registration: %w", err)
	}
	return nil
}
