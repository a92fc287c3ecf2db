package answers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisRepository keeps answered sets as Redis sets keyed by tournament and user.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func answeredKey(userID, tournamentID uuid.UUID) string {
	return "answered:" + tournamentID.String() + ":" + userID.String()
}

func (r *RedisRepository) FetchAnsweredQuestionIDs(ctx context.Context, userID, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	members, err := r.client.SMembers(ctx, answeredKey(userID, tournamentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read answered set: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			log.Warn().Str("member", m).Msg("skipping malformed question id in answered set")
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkAnswered adds question IDs to the user's answered set.
func (r *RedisRepository) MarkAnswered(ctx context.Context, userID, tournamentID uuid.UUID, questionIDs ...uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(questionIDs))
	for _, id := range questionIDs {
		members = append(members, id.String())
	}
	if err := r.client.SAdd(ctx, answeredKey(userID, tournamentID), members...).Err(); err != nil {
		return fmt.Errorf("failed to mark answered: %w", err)
	}
	return nil
}
