package fixtures

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/memory"
	"github.com/mcdev12/livequiz/go/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a fixture file.
type File struct {
	Tournaments   []TournamentFixture   `yaml:"tournaments"`
	Registrations []RegistrationFixture `yaml:"registrations"`
	Answers       []AnswerFixture       `yaml:"answers"`
}

// TournamentFixture describes one tournament. Either StartTime or StartIn is set;
// StartIn is relative to the moment the fixture is resolved.
type TournamentFixture struct {
	ID                  string                    `yaml:"id"`
	Title               string                    `yaml:"title"`
	Status              models.TournamentStatus   `yaml:"status"`
	StartTime           *time.Time                `yaml:"start_time"`
	StartIn             time.Duration             `yaml:"start_in"`
	DurationPerQuestion time.Duration             `yaml:"duration_per_question"`
	TotalQuestions      *int                      `yaml:"total_questions"`
	Settings            models.TournamentSettings `yaml:"settings"`
	Questions           []QuestionFixture         `yaml:"questions"`
}

type QuestionFixture struct {
	ID       string          `yaml:"id"`
	Text     string          `yaml:"text"`
	Position *int            `yaml:"position"`
	Options  []OptionFixture `yaml:"options"`
}

type OptionFixture struct {
	ID      string `yaml:"id"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

type RegistrationFixture struct {
	UserID       string `yaml:"user_id"`
	TournamentID string `yaml:"tournament_id"`
	HasPaid      bool   `yaml:"has_paid"`
}

type AnswerFixture struct {
	UserID       string   `yaml:"user_id"`
	TournamentID string   `yaml:"tournament_id"`
	QuestionIDs  []string `yaml:"question_ids"`
}

// Dataset is a resolved fixture file.
type Dataset struct {
	Tournaments   []*models.Tournament
	Registrations []Registration
	Answers       []Answered
	// CorrectOptions holds the IDs of correct options. Never exposed to clients.
	CorrectOptions map[uuid.UUID]bool
}

type Registration struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
	HasPaid      bool
}

type Answered struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
	QuestionIDs  []uuid.UUID
}

// Load reads and parses a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// Resolve turns the file into domain values. Missing IDs are generated,
// missing positions follow file order.
func (f *File) Resolve(now time.Time) (*Dataset, error) {
	ds := &Dataset{CorrectOptions: make(map[uuid.UUID]bool)}

	for i, tf := range f.Tournaments {
		t, err := tf.resolve(now, ds.CorrectOptions)
		if err != nil {
			return nil, fmt.Errorf("tournament %d: %w", i, err)
		}
		ds.Tournaments = append(ds.Tournaments, t)
	}

	for i, rf := range f.Registrations {
		userID, err := parseID(rf.UserID, "user_id")
		if err != nil {
			return nil, fmt.Errorf("registration %d: %w", i, err)
		}
		tournamentID, err := parseID(rf.TournamentID, "tournament_id")
		if err != nil {
			return nil, fmt.Errorf("registration %d: %w", i, err)
		}
		ds.Registrations = append(ds.Registrations, Registration{UserID: userID, TournamentID: tournamentID, HasPaid: rf.HasPaid})
	}

	for i, af := range f.Answers {
		userID, err := parseID(af.UserID, "user_id")
		if err != nil {
			return nil, fmt.Errorf("answers %d: %w", i, err)
		}
		tournamentID, err := parseID(af.TournamentID, "tournament_id")
		if err != nil {
			return nil, fmt.Errorf("answers %d: %w", i, err)
		}
		answered := Answered{UserID: userID, TournamentID: tournamentID}
		for _, raw := range af.QuestionIDs {
			id, err := parseID(raw, "question_ids")
			if err != nil {
				return nil, fmt.Errorf("answers %d: %w", i, err)
			}
			answered.QuestionIDs = append(answered.QuestionIDs, id)
		}
		ds.Answers = append(ds.Answers, answered)
	}

	return ds, nil
}

func (tf TournamentFixture) resolve(now time.Time, correct map[uuid.UUID]bool) (*models.Tournament, error) {
	id, err := parseOptionalID(tf.ID)
	if err != nil {
		return nil, err
	}

	start := now.Add(tf.StartIn)
	if tf.StartTime != nil {
		start = *tf.StartTime
	}

	status := tf.Status
	if status == "" {
		status = models.TournamentStatusPublished
	}

	t := &models.Tournament{
		ID:                  id,
		Title:               tf.Title,
		Status:              status,
		StartTime:           start.UTC(),
		DurationPerQuestion: tf.DurationPerQuestion,
		Settings:            tf.Settings,
	}

	for i, qf := range tf.Questions {
		qid, err := parseOptionalID(qf.ID)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		position := i + 1
		if qf.Position != nil {
			position = *qf.Position
		}
		q := models.Question{ID: qid, Text: qf.Text, Position: position}
		for j, of := range qf.Options {
			oid, err := parseOptionalID(of.ID)
			if err != nil {
				return nil, fmt.Errorf("question %d option %d: %w", i, j, err)
			}
			q.Options = append(q.Options, models.Option{ID: oid, Text: of.Text})
			if of.Correct {
				correct[oid] = true
			}
		}
		t.Questions = append(t.Questions, q)
	}
	models.SortQuestions(t.Questions)

	t.TotalQuestions = len(t.Questions)
	if tf.TotalQuestions != nil {
		t.TotalQuestions = *tf.TotalQuestions
	}
	return t, nil
}

// Apply seeds a memory store with the dataset.
func Apply(store *memory.Store, ds *Dataset) {
	for _, t := range ds.Tournaments {
		store.PutTournament(t)
	}
	for _, r := range ds.Registrations {
		store.Register(r.UserID, r.TournamentID, r.HasPaid)
	}
	for _, a := range ds.Answers {
		store.MarkAnswered(a.UserID, a.TournamentID, a.QuestionIDs...)
	}
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return id, nil
}

func parseOptionalID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return parseID(raw, "id")
}
