package answers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository reads submitted responses.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) FetchAnsweredQuestionIDs(ctx context.Context, userID, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
SELECT DISTINCT question_id
FROM responses
WHERE user_id = $1 AND tournament_id = $2`

	rows, err := r.pool.Query(ctx, query, userID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return ids, nil
}

// RecordResponse stores that a user answered a question. The submission path
// itself lives elsewhere; this exists for seeding and tests.
func (r *PostgresRepository) RecordResponse(ctx context.Context, userID, tournamentID, questionID uuid.UUID) error {
	const query = `
INSERT INTO responses (user_id, tournament_id, question_id)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, tournament_id, question_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, tournamentID, questionID); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}
