package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/mcdev12/livequiz/go/internal/testsuite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integrationTournament() *models.Tournament {
	t := &models.Tournament{
		ID:                  uuid.New(),
		Title:               "Integration Trivia",
		Status:              models.TournamentStatusPublished,
		StartTime:           time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
		DurationPerQuestion: 20 * time.Second,
		TotalQuestions:      3,
		Settings: models.TournamentSettings{
			Category:   "science",
			Difficulty: models.DifficultyHard,
		},
	}
	// Two questions share a position so the text tiebreak is exercised.
	for _, q := range []struct {
		text     string
		position int
	}{{"Zinc symbol?", 2}, {"Boiling point of water?", 1}, {"Atomic number of carbon?", 2}} {
		t.Questions = append(t.Questions, models.Question{
			ID:       uuid.New(),
			Text:     q.text,
			Position: q.position,
			Options:  []models.Option{{ID: uuid.New(), Text: "first"}, {ID: uuid.New(), Text: "second"}},
		})
	}
	return t
}

func TestRepository_Postgres(t *testing.T) {
	ctx, pg := testsuite.NewPostgres(t)
	repo := NewRepository(pg.DB)
	want := integrationTournament()
	correct := map[uuid.UUID]bool{want.Questions[0].Options[1].ID: true}

	require.NoError(t, repo.CreateTournament(ctx, want, correct))

	got, err := repo.GetTournamentWithQuestions(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.True(t, got.StartTime.Equal(want.StartTime))
	assert.Equal(t, want.DurationPerQuestion, got.DurationPerQuestion)
	assert.Equal(t, want.Settings, got.Settings)
	require.NoError(t, got.Validate())

	texts := []string{got.Questions[0].Text, got.Questions[1].Text, got.Questions[2].Text}
	assert.Equal(t, []string{"Boiling point of water?", "Atomic number of carbon?", "Zinc symbol?"}, texts)
	assert.Equal(t, "first", got.Questions[2].Options[0].Text)
	assert.Equal(t, "second", got.Questions[2].Options[1].Text)

	var isCorrect bool
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT is_correct FROM options WHERE id = $1`, want.Questions[0].Options[1].ID).Scan(&isCorrect))
	assert.True(t, isCorrect)

	_, err = repo.GetTournamentWithQuestions(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrationRepository_Postgres(t *testing.T) {
	ctx, pg := testsuite.NewPostgres(t)
	tour := integrationTournament()
	require.NoError(t, NewRepository(pg.DB).CreateTournament(ctx, tour, nil))
	repo := NewRegistrationRepository(pg.Pool)
	userID := uuid.New()

	ok, err := repo.IsRegistered(ctx, userID, tour.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Register(ctx, userID, tour.ID, false))
	ok, err = repo.IsRegistered(ctx, userID, tour.ID)
	require.NoError(t, err)
	assert.False(t, ok, "unpaid registration does not pass")

	require.NoError(t, repo.Register(ctx, userID, tour.ID, true))
	ok, err = repo.IsRegistered(ctx, userID, tour.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvalidationListener_Postgres(t *testing.T) {
	ctx, pg := testsuite.NewPostgres(t)
	inv := &recordingInvalidator{hit: make(chan struct{}, 16)}

	cfg := DefaultListenerConfig()
	cfg.DatabaseURL = pg.URL
	listener, err := NewInvalidationListener(inv, nil, cfg)
	require.NoError(t, err)

	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- listener.Start(listenCtx) }()

	tour := integrationTournament()
	require.NoError(t, NewRepository(pg.DB).CreateTournament(ctx, tour, nil))

	select {
	case <-inv.hit:
	case <-time.After(10 * time.Second):
		t.Fatal("no invalidation received")
	}
	inv.mu.Lock()
	assert.Contains(t, inv.ids, tour.ID)
	inv.mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
