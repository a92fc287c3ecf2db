package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/mcdev12/livequiz/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// ErrNotFound is returned when a tournament ID does not resolve.
var ErrNotFound = errors.New("tournament not found")

// Repository loads tournaments with their ordered questions and options.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

type tournamentRow struct {
	ID                     uuid.UUID
	Title                  string
	Status                 string
	StartTime              time.Time
	DurationPerQuestionSec int
	TotalQuestions         int
	Settings               pqtype.NullRawMessage
}

func (r *Repository) GetTournamentWithQuestions(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	const tournamentQuery = `
SELECT id, title, status, start_time, duration_per_question_sec, total_questions, settings
FROM tournaments
WHERE id = $1`

	var row tournamentRow
	err := r.db.QueryRowContext(ctx, tournamentQuery, id).Scan(
		&row.ID, &row.Title, &row.Status, &row.StartTime,
		&row.DurationPerQuestionSec, &row.TotalQuestions, &row.Settings,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	t, err := r.dbTournamentToModel(row)
	if err != nil {
		return nil, err
	}

	questions, err := r.listQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Questions = questions
	return t, nil
}

func (r *Repository) listQuestions(ctx context.Context, tournamentID uuid.UUID) ([]models.Question, error) {
	const questionQuery = `
SELECT id, position, text
FROM questions
WHERE tournament_id = $1
ORDER BY position ASC, text ASC`

	rows, err := r.db.QueryContext(ctx, questionQuery, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Position, &q.Text); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Options = []models.Option{}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	// Only public columns are selected; is_correct never leaves the database.
	const optionQuery = `
SELECT o.id, o.question_id, o.text
FROM options o
JOIN questions q ON q.id = o.question_id
WHERE q.tournament_id = $1
ORDER BY o.position ASC, o.id ASC`

	optionRows, err := r.db.QueryContext(ctx, optionQuery, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer optionRows.Close()

	for optionRows.Next() {
		var (
			o          models.Option
			questionID uuid.UUID
		)
		if err := optionRows.Scan(&o.ID, &questionID, &o.Text); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		if i, ok := index[questionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optionRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}
	return questions, nil
}

// CreateTournament inserts a tournament with its questions and options in one
// transaction. correctOptions marks the options stored with is_correct set.
// Used by the seeding tool and integration tests.
func (r *Repository) CreateTournament(ctx context.Context, t *models.Tournament, correctOptions map[uuid.UUID]bool) error {
	settings, err := sqlutil.ToNullRawMessage(t.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal tournament settings: %w", err)
	}

	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO tournaments (id, title, status, start_time, duration_per_question_sec, total_questions, settings)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.Title, string(t.Status), t.StartTime,
			sqlutil.ToSeconds(t.DurationPerQuestion), t.TotalQuestions, settings,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tournament: %w", err)
		}

		for _, q := range t.Questions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO questions (id, tournament_id, position, text) VALUES ($1, $2, $3, $4)`,
				q.ID, t.ID, q.Position, q.Text,
			); err != nil {
				return fmt.Errorf("failed to insert question: %w", err)
			}
			for i, o := range q.Options {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO options (id, question_id, position, text, is_correct) VALUES ($1, $2, $3, $4, $5)`,
					o.ID, q.ID, i, o.Text, correctOptions[o.ID],
				); err != nil {
					return fmt.Errorf("failed to insert option: %w", err)
				}
			}
		}
		return nil
	})
}

func (r *Repository) dbTournamentToModel(row tournamentRow) (*models.Tournament, error) {
	t := &models.Tournament{
		ID:                  row.ID,
		Title:               row.Title,
		Status:              models.TournamentStatus(row.Status),
		StartTime:           row.StartTime.UTC(),
		DurationPerQuestion: sqlutil.FromSeconds(row.DurationPerQuestionSec),
		TotalQuestions:      row.TotalQuestions,
	}
	if err := sqlutil.FromNullRawMessage(row.Settings, &t.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament settings: %w", err)
	}
	return t, nil
}
