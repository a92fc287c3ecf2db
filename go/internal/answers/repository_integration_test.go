package answers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/testsuite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository(t *testing.T) {
	ctx, client := testsuite.NewRedis(t)
	repo := NewRedisRepository(client)
	userID, tournamentID := uuid.New(), uuid.New()
	q1, q2 := uuid.New(), uuid.New()

	ids, err := repo.FetchAnsweredQuestionIDs(ctx, userID, tournamentID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.MarkAnswered(ctx, userID, tournamentID, q1, q2))
	require.NoError(t, repo.MarkAnswered(ctx, userID, tournamentID))
	require.NoError(t, client.SAdd(ctx, answeredKey(userID, tournamentID), "not-a-uuid").Err())

	ids, err = repo.FetchAnsweredQuestionIDs(ctx, userID, tournamentID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{q1, q2}, ids)

	set, err := NewLookup(repo, time.Second).Fetch(ctx, userID, tournamentID)
	require.NoError(t, err)
	assert.True(t, set.Has(q1))
	assert.False(t, set.Has(uuid.New()))
}

func TestPostgresRepository(t *testing.T) {
	ctx, pg := testsuite.NewPostgres(t)
	repo := NewPostgresRepository(pg.Pool)

	tournamentID, q1, q2 := uuid.New(), uuid.New(), uuid.New()
	_, err := pg.DB.ExecContext(ctx, `
INSERT INTO tournaments (id, title, start_time, duration_per_question_sec, total_questions)
VALUES ($1, 'Integration', NOW(), 30, 2)`, tournamentID)
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, `
INSERT INTO questions (id, tournament_id, position, text)
VALUES ($1, $3, 1, 'one'), ($2, $3, 2, 'two')`, q1, q2, tournamentID)
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, repo.RecordResponse(ctx, userID, tournamentID, q1))
	require.NoError(t, repo.RecordResponse(ctx, userID, tournamentID, q1))

	ids, err := repo.FetchAnsweredQuestionIDs(ctx, userID, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{q1}, ids)

	ids, err = repo.FetchAnsweredQuestionIDs(ctx, uuid.New(), tournamentID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
