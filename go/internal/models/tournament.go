package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TournamentStatus is the publishing status of a tournament. It is informational
// only: which question is live is always derived from the schedule.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "DRAFT"
	TournamentStatusPublished TournamentStatus = "PUBLISHED"
	TournamentStatusLive      TournamentStatus = "LIVE"
	TournamentStatusCompleted TournamentStatus = "COMPLETED"
)

// Difficulty of the generated question bank.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var (
	ErrInvalidDuration       = errors.New("duration per question must be positive")
	ErrQuestionCountMismatch = errors.New("question count does not match total questions")
)

// TournamentSettings holds JSONB configuration for tournaments.
type TournamentSettings struct {
	Description string     `json:"description,omitempty" yaml:"description"`
	Category    string     `json:"category,omitempty" yaml:"category"`
	Difficulty  Difficulty `json:"difficulty,omitempty" yaml:"difficulty"`
}

// Tournament is a scheduled quiz. Every question is live for exactly
// DurationPerQuestion, back to back, starting at StartTime.
type Tournament struct {
	ID                  uuid.UUID          `json:"id"`
	Title               string             `json:"title"`
	Status              TournamentStatus   `json:"status"`
	StartTime           time.Time          `json:"start_time"`
	DurationPerQuestion time.Duration      `json:"duration_per_question"`
	TotalQuestions      int                `json:"total_questions"`
	Settings            TournamentSettings `json:"settings"`
	Questions           []Question         `json:"questions"`
}

// Question is the public view of a question. Correctness data never lives here.
type Question struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
	Options  []Option  `json:"options"`
}

// Option is a selectable answer.
type Option struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// Validate reports configuration errors that make the timing undefined.
func (t *Tournament) Validate() error {
	if t.DurationPerQuestion <= 0 {
		return fmt.Errorf("tournament %s: %w", t.ID, ErrInvalidDuration)
	}
	if len(t.Questions) != t.TotalQuestions {
		return fmt.Errorf("tournament %s has %d questions, expected %d: %w",
			t.ID, len(t.Questions), t.TotalQuestions, ErrQuestionCountMismatch)
	}
	return nil
}

// QuestionAt returns the question at a zero-based index.
func (t *Tournament) QuestionAt(index int) (*Question, bool) {
	if index < 0 || index >= len(t.Questions) {
		return nil, false
	}
	return &t.Questions[index], true
}

// SortQuestions orders questions by position, breaking ties by text.
func SortQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Position != questions[j].Position {
			return questions[i].Position < questions[j].Position
		}
		return questions[i].Text < questions[j].Text
	})
}
