package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/mcdev12/livequiz/go/internal/tournament"
)

type userTournament struct {
	userID       uuid.UUID
	tournamentID uuid.UUID
}

// Store keeps tournaments, answers and registrations in process memory.
type Store struct {
	mu            sync.RWMutex
	tournaments   map[uuid.UUID]*models.Tournament
	answered      map[userTournament]map[uuid.UUID]struct{}
	registrations map[userTournament]bool
}

func NewStore() *Store {
	return &Store{
		tournaments:   make(map[uuid.UUID]*models.Tournament),
		answered:      make(map[userTournament]map[uuid.UUID]struct{}),
		registrations: make(map[userTournament]bool),
	}
}

// PutTournament stores a copy of t with its questions in play order.
func (s *Store) PutTournament(t *models.Tournament) {
	stored := cloneTournament(t)
	models.SortQuestions(stored.Questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[stored.ID] = stored
}

func (s *Store) GetTournamentWithQuestions(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[id]
	if !ok {
		return nil, tournament.ErrNotFound
	}
	return cloneTournament(t), nil
}

// MarkAnswered records answered questions for a user.
func (s *Store) MarkAnswered(userID, tournamentID uuid.UUID, questionIDs ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userTournament{userID: userID, tournamentID: tournamentID}
	if s.answered[key] == nil {
		s.answered[key] = make(map[uuid.UUID]struct{})
	}
	for _, id := range questionIDs {
		s.answered[key][id] = struct{}{}
	}
}

func (s *Store) FetchAnsweredQuestionIDs(ctx context.Context, userID, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	answered := s.answered[userTournament{userID: userID, tournamentID: tournamentID}]
	ids := make([]uuid.UUID, 0, len(answered))
	for id := range answered {
		ids = append(ids, id)
	}
	return ids, nil
}

// Register records a registration. Only paid registrations pass the gate.
func (s *Store) Register(userID, tournamentID uuid.UUID, hasPaid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[userTournament{userID: userID, tournamentID: tournamentID}] = hasPaid
}

func (s *Store) IsRegistered(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registrations[userTournament{userID: userID, tournamentID: tournamentID}], nil
}

func cloneTournament(t *models.Tournament) *models.Tournament {
	c := *t
	c.Questions = make([]models.Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]models.Option(nil), q.Options...)
		c.Questions[i] = q
	}
	return &c
}
